package request

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the requests schema
// applied. The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "request-test-*.db")
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
		CREATE TABLE requests (
			id                   TEXT PRIMARY KEY,
			username             TEXT NOT NULL,
			category             TEXT NOT NULL,
			details              TEXT NOT NULL,
			status               TEXT NOT NULL DEFAULT 'pending',
			created_at           TEXT NOT NULL,
			estimated_completion TEXT NOT NULL,
			processed_at         TEXT
		) STRICT;

		CREATE INDEX idx_requests_category_status ON requests(category, status);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// newTestService wires a Service over the test database with a silent logger.
func newTestService(t *testing.T, db *sql.DB) *Service {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewRepository(db), logger)
}
