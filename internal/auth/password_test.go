package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestSHA256Hasher_Deterministic(t *testing.T) {
	h := SHA256Hasher{}

	hash1, err := h.Hash("admin123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := h.Hash("admin123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash1 != hash2 {
		t.Errorf("same password should hash identically: %q vs %q", hash1, hash2)
	}
	if len(hash1) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(hash1))
	}
}

func TestSHA256Hasher_KnownDigest(t *testing.T) {
	hash, err := SHA256Hasher{}.Hash("admin123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// echo -n admin123 | sha256sum
	want := "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"
	if hash != want {
		t.Errorf("Hash(admin123) = %q, want %q", hash, want)
	}
}

func TestSHA256Hasher_Verify(t *testing.T) {
	h := SHA256Hasher{}
	stored, _ := h.Hash("correct-password")

	ok, err := h.Verify("correct-password", stored)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() should return true for correct password")
	}

	ok, err = h.Verify("wrong-password", stored)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Error("Verify() should return false for wrong password")
	}
}

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := Argon2Hasher{}
	password := "correct-horse-battery-staple"

	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Verify the hash is in PHC format
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash should start with $argon2id$, got %q", hash)
	}

	ok, err := h.Verify(password, hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() should return true for correct password")
	}

	ok, err = h.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Error("Verify() should return false for wrong password")
	}
}

func TestArgon2Hasher_UniqueSalts(t *testing.T) {
	h := Argon2Hasher{}

	hash1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password should have different salts")
	}
}

func TestArgon2Hasher_InvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not PHC", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=1$salt$hash"},
		{"too few parts", "$argon2id$v=19$m=65536,t=3,p=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Argon2Hasher{}.Verify("password", tt.hash)
			if err == nil {
				t.Error("Verify() should return error for invalid hash format")
			}
		})
	}
}

func TestNewHasher(t *testing.T) {
	tests := []struct {
		scheme  string
		want    Hasher
		wantErr bool
	}{
		{scheme: "sha256", want: SHA256Hasher{}},
		{scheme: "", want: SHA256Hasher{}},
		{scheme: "argon2id", want: Argon2Hasher{}},
		{scheme: "bcrypt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("scheme "+tt.scheme, func(t *testing.T) {
			h, err := NewHasher(tt.scheme)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedScheme) {
					t.Errorf("NewHasher(%q) error = %v, want ErrUnsupportedScheme", tt.scheme, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewHasher(%q) error = %v", tt.scheme, err)
			}
			if h != tt.want {
				t.Errorf("NewHasher(%q) = %T, want %T", tt.scheme, h, tt.want)
			}
		})
	}
}
