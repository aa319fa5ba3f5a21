package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/campuscore/campus-core/internal/infrastructure/database"
)

// TestCampusSchema applies the embedded campus migrations and verifies the
// tables the services depend on come out usable.
func TestCampusSchema(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "campus.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	for _, table := range []string{
		"users", "courses", "sessions", "requests", "feeding_sites", "audit_logs",
	} {
		var count int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking for table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s missing from schema", table)
		}
	}

	// STRICT tables enforce column types; a well-formed account row must insert
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, is_active, created_at)
		VALUES ('alice', 'a@cms.example', 'digest', 'student', 0, '2026-03-15T12:00:00Z')
	`)
	if err != nil {
		t.Fatalf("inserting account row: %v", err)
	}

	// Case-only username collision must hit the NOCASE primary key
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, is_active, created_at)
		VALUES ('ALICE', 'other@cms.example', 'digest', 'student', 0, '2026-03-15T12:00:00Z')
	`)
	if err == nil {
		t.Error("case-only duplicate username should violate the primary key")
	}

	// The rollback script must remove everything it created
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	var count int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'",
	).Scan(&count)
	if err != nil {
		t.Fatalf("checking for users table: %v", err)
	}
	if count != 0 {
		t.Error("users table should have been dropped by rollback")
	}
}
