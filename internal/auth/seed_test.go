package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestSeedAdmin_FirstBoot(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	password, err := SeedAdmin(ctx, repo, SHA256Hasher{}, "admin123", logger)
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password != "admin123" {
		t.Errorf("password = %q, want configured value", password)
	}

	admin, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername(admin) error = %v", err)
	}
	if admin.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", admin.Role, RoleAdmin)
	}
	if !admin.IsActive {
		t.Error("seed admin should be active")
	}
	if admin.Email != "admin@cms.com" {
		t.Errorf("Email = %q, want admin@cms.com", admin.Email)
	}

	ok, err := SHA256Hasher{}.Verify("admin123", admin.PasswordHash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("seed admin password should verify")
	}
}

func TestSeedAdmin_GeneratesPassword(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	password, err := SeedAdmin(context.Background(), repo, SHA256Hasher{}, "", logger)
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if len(password) != seedPasswordBytes*2 {
		t.Errorf("generated password length = %d, want %d hex chars", len(password), seedPasswordBytes*2)
	}
}

func TestSeedAdmin_SkipsWhenAdminExists(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	seedTestAccount(t, db, "existing-admin", RoleAdmin, true)

	password, err := SeedAdmin(ctx, repo, SHA256Hasher{}, "admin123", logger)
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password != "" {
		t.Errorf("password = %q, want empty when seeding skipped", password)
	}

	if _, err := repo.GetByUsername(ctx, "admin"); err == nil {
		t.Error("no admin account should have been created")
	}
}
