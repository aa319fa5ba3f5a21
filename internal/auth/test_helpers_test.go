package auth

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testTTL is the session validity window used by repository tests.
const testTTL = 5 * time.Minute

// testDB creates a temporary SQLite database with the account and session
// schema applied. The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			username        TEXT PRIMARY KEY COLLATE NOCASE,
			email           TEXT NOT NULL COLLATE NOCASE,
			password_hash   TEXT NOT NULL,
			role            TEXT NOT NULL DEFAULT 'student',
			is_active       INTEGER NOT NULL DEFAULT 0,
			activation_code TEXT,
			created_at      TEXT NOT NULL
		) STRICT;

		CREATE UNIQUE INDEX idx_users_email ON users(email);
		CREATE INDEX idx_users_role ON users(role);

		CREATE TABLE courses (
			username TEXT NOT NULL COLLATE NOCASE,
			code     TEXT NOT NULL,
			title    TEXT NOT NULL,
			PRIMARY KEY (username, code),
			FOREIGN KEY (username) REFERENCES users(username) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE sessions (
			token       TEXT PRIMARY KEY,
			username    TEXT NOT NULL,
			role        TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			last_access TEXT NOT NULL
		) STRICT;

		CREATE INDEX idx_sessions_created ON sessions(created_at);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// seedTestAccount inserts an account directly and returns it.
func seedTestAccount(t *testing.T, db *sql.DB, username string, role Role, active bool) *Account {
	t.Helper()

	hash, err := SHA256Hasher{}.Hash("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	account := &Account{
		Username:     username,
		Email:        username + "@cms.example",
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	if !active {
		account.ActivationCode = "code-" + username
	}
	if err := repo.Create(t.Context(), account); err != nil {
		t.Fatalf("creating test account %s: %v", username, err)
	}
	return account
}

// backdateSession rewrites a session's created_at so TTL expiry can be
// tested without sleeping.
func backdateSession(t *testing.T, db *sql.DB, token string, age time.Duration) {
	t.Helper()

	past := time.Now().UTC().Add(-age).Format(time.RFC3339)
	if _, err := db.Exec(
		"UPDATE sessions SET created_at = ?, last_access = ? WHERE token = ?",
		past, past, token); err != nil {
		t.Fatalf("backdating session: %v", err)
	}
}
