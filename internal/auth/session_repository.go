package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SessionRepository defines the interface for session persistence.
//
// Get must never return a session past its TTL: backends either expire
// records natively (Redis) or filter stale rows on read and rely on a
// reaper for physical cleanup (SQLite).
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// SQLiteSessionRepository implements SessionRepository using SQLite.
// Expiry is lazy: reads filter on created_at and DeleteExpired purges
// stale rows from a periodic reaper loop.
type SQLiteSessionRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSessionRepository creates a new SQLite-backed session repository.
func NewSessionRepository(db *sql.DB, ttl time.Duration) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db, ttl: ttl}
}

// Create inserts a new session record.
func (r *SQLiteSessionRepository) Create(ctx context.Context, session *Session) error {
	now := time.Now().UTC().Format(time.RFC3339)
	session.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	session.LastAccess = session.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, username, role, created_at, last_access)
		 VALUES (?, ?, ?, ?, ?)`,
		session.Token, session.Username, string(session.Role), now, now,
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	return nil
}

// Get retrieves a live session by token and refreshes its last_access.
// A row past the TTL is reported as ErrSessionNotFound even before the
// reaper has removed it.
func (r *SQLiteSessionRepository) Get(ctx context.Context, token string) (*Session, error) {
	var s Session
	var role string
	var createdAt, lastAccess string

	cutoff := time.Now().UTC().Add(-r.ttl).Format(time.RFC3339)

	err := r.db.QueryRowContext(ctx,
		`SELECT token, username, role, created_at, last_access
		 FROM sessions WHERE token = ? AND created_at > ?`, token, cutoff,
	).Scan(&s.Token, &s.Username, &role, &createdAt, &lastAccess)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	s.Role = Role(role)
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	now := time.Now().UTC().Format(time.RFC3339)
	s.LastAccess, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	// last-write-wins under concurrent requests from the same client
	if _, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET last_access = ? WHERE token = ?", now, token); err != nil {
		return nil, fmt.Errorf("refreshing session access: %w", err)
	}

	return &s, nil
}

// Delete removes a session by token. Deleting an absent token is not an
// error; the bool reports whether a record was present.
func (r *SQLiteSessionRepository) Delete(ctx context.Context, token string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return false, fmt.Errorf("deleting session: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return rows > 0, nil
}

// DeleteExpired removes sessions past their TTL, freeing storage.
// Returns the number of deleted rows.
func (r *SQLiteSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-r.ttl).Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE created_at <= ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}

	count, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return count, nil
}
