package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db, testTTL)
	ctx := context.Background()

	session := &Session{
		Token:    "tok-abc",
		Username: "alice",
		Role:     RoleStudent,
	}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.CreatedAt.IsZero() {
		t.Fatal("Create() should set CreatedAt")
	}

	got, err := repo.Get(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want %q", got.Username, "alice")
	}
	if got.Role != RoleStudent {
		t.Errorf("Role = %q, want %q", got.Role, RoleStudent)
	}
}

func TestSessionRepository_Get_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db, testTTL)

	_, err := repo.Get(context.Background(), "no-such-token")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRepository_Get_Expired(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db, testTTL)
	ctx := context.Background()

	session := &Session{Token: "tok-old", Username: "alice", Role: RoleStudent}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Past TTL but not yet reaped: the read must still reject it
	backdateSession(t, db, "tok-old", testTTL+time.Minute)

	if _, err := repo.Get(ctx, "tok-old"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after TTL error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRepository_Get_RefreshesLastAccess(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db, testTTL)
	ctx := context.Background()

	session := &Session{Token: "tok-abc", Username: "alice", Role: RoleStudent}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Age last_access (but not created_at) past the original value
	past := time.Now().UTC().Add(-2 * time.Minute).Format(time.RFC3339)
	if _, err := db.Exec("UPDATE sessions SET last_access = ? WHERE token = ?", past, "tok-abc"); err != nil {
		t.Fatalf("aging last_access: %v", err)
	}

	if _, err := repo.Get(ctx, "tok-abc"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	var stored string
	if err := db.QueryRow("SELECT last_access FROM sessions WHERE token = ?", "tok-abc").Scan(&stored); err != nil {
		t.Fatalf("reading last_access: %v", err)
	}
	lastAccess, err := time.Parse(time.RFC3339, stored)
	if err != nil {
		t.Fatalf("parsing last_access: %v", err)
	}
	if time.Since(lastAccess) > 10*time.Second {
		t.Errorf("last_access = %v, want refreshed to now", lastAccess)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db, testTTL)
	ctx := context.Background()

	session := &Session{Token: "tok-abc", Username: "alice", Role: RoleStudent}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	existed, err := repo.Delete(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !existed {
		t.Error("Delete() = false, want true for present token")
	}

	if _, err := repo.Get(ctx, "tok-abc"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}

	// Idempotent: deleting again is not an error
	existed, err = repo.Delete(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if existed {
		t.Error("second Delete() = true, want false for absent token")
	}
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db, testTTL)
	ctx := context.Background()

	fresh := &Session{Token: "tok-fresh", Username: "alice", Role: RoleStudent}
	stale := &Session{Token: "tok-stale", Username: "bob", Role: RoleStudent}
	for _, s := range []*Session{fresh, stale} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create(%s) error = %v", s.Token, err)
		}
	}
	backdateSession(t, db, "tok-stale", testTTL+time.Minute)

	count, err := repo.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if count != 1 {
		t.Errorf("DeleteExpired() = %d, want 1", count)
	}

	if _, err := repo.Get(ctx, "tok-fresh"); err != nil {
		t.Errorf("fresh session should survive the reaper: %v", err)
	}
}
