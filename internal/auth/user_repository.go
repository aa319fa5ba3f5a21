package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UserRepository defines the interface for account persistence.
type UserRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Activate(ctx context.Context, username string) error
	VerifyActivation(ctx context.Context, email, code string) (bool, error)
	CountByRole(ctx context.Context, role Role) (int, error)
	ListCourses(ctx context.Context, username string) ([]Course, error)
	AddCourse(ctx context.Context, username string, course Course) error
}

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = "username, email, password_hash, role, is_active, activation_code, created_at"

// Create inserts a new account. Uniqueness of username and email is enforced
// by the store's indexes; violations surface as ErrDuplicateIdentity.
func (r *SQLiteUserRepository) Create(ctx context.Context, account *Account) error {
	now := time.Now().UTC().Format(time.RFC3339)
	account.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role, is_active, activation_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.Username, account.Email, account.PasswordHash, string(account.Role),
		boolToInt(account.IsActive), nullString(account.ActivationCode), now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

// GetByUsername retrieves an account by username. Lookup is case-insensitive
// (the username column collates NOCASE).
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return r.getAccount(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

// GetByEmail retrieves an account by email address.
func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.getAccount(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// List returns all accounts ordered by creation date.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at ASC, username ASC")
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccountFrom(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}

// Activate flips an account to active and clears its activation code.
// Used by the admin activation panel; succeeds regardless of the code.
func (r *SQLiteUserRepository) Activate(ctx context.Context, username string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_active = 1, activation_code = NULL WHERE username = ?", username)
	if err != nil {
		return fmt.Errorf("activating account: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// VerifyActivation activates the account matching both email and code in a
// single conditional update, so the check and the mutation cannot race.
// Returns false with no mutation when nothing matches.
func (r *SQLiteUserRepository) VerifyActivation(ctx context.Context, email, code string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = 1, activation_code = NULL
		 WHERE email = ? AND activation_code = ? AND is_active = 0`,
		email, code)
	if err != nil {
		return false, fmt.Errorf("verifying activation: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return rows > 0, nil
}

// CountByRole returns the number of accounts holding the given role.
func (r *SQLiteUserRepository) CountByRole(ctx context.Context, role Role) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role = ?", string(role)).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts by role: %w", err)
	}
	return count, nil
}

// ListCourses returns the courses a user is enrolled in, ordered by code.
func (r *SQLiteUserRepository) ListCourses(ctx context.Context, username string) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT code, title FROM courses WHERE username = ? ORDER BY code ASC", username)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.Code, &c.Title); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}

	if courses == nil {
		courses = []Course{}
	}
	return courses, nil
}

// AddCourse enrols a user in a course. Re-enrolling in the same code is
// rejected by the composite primary key.
func (r *SQLiteUserRepository) AddCourse(ctx context.Context, username string, course Course) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO courses (username, code, title) VALUES (?, ?, ?)",
		username, course.Code, course.Title)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("adding course: %w", err)
	}
	return nil
}

// getAccount executes a query and scans a single account result.
func (r *SQLiteUserRepository) getAccount(ctx context.Context, query string, args ...any) (*Account, error) {
	return scanAccountFrom(r.db.QueryRowContext(ctx, query, args...))
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanAccountFrom scans an account from any scanner (Row or Rows).
func scanAccountFrom(s scanner) (*Account, error) {
	var a Account
	var activationCode sql.NullString
	var role string
	var isActive int
	var createdAt string

	err := s.Scan(&a.Username, &a.Email, &a.PasswordHash, &role,
		&isActive, &activationCode, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	a.Role = Role(role)
	a.IsActive = isActive != 0
	if activationCode.Valid {
		a.ActivationCode = activationCode.String
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &a, nil
}

// Helper functions.

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}
