package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
)

// Seed admin identity created on first boot.
const (
	seedAdminUsername = "admin"
	seedAdminEmail    = "admin@cms.com"

	// seedPasswordBytes is the number of random bytes for a generated
	// admin password when none is configured.
	seedPasswordBytes = 16
)

// SeedAdmin creates the initial admin account on first boot if no admin
// exists. When password is empty a random one is generated and logged — it
// must be changed immediately. Returns the password used (empty string if
// seeding was skipped).
func SeedAdmin(ctx context.Context, userRepo UserRepository, hasher Hasher, password string, logger *slog.Logger) (string, error) {
	count, err := userRepo.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("checking admin count: %w", err)
	}

	if count > 0 {
		logger.Info("admin account exists, skipping seed")
		return "", nil
	}

	generated := password == ""
	if generated {
		passwordBytes := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
			return "", fmt.Errorf("generating seed password: %w", err)
		}
		password = hex.EncodeToString(passwordBytes)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &Account{
		Username:     seedAdminUsername,
		Email:        seedAdminEmail,
		PasswordHash: hash,
		Role:         RoleAdmin,
		IsActive:     true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			// another instance won the race; nothing to do
			logger.Info("admin account exists, skipping seed")
			return "", nil
		}
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	if generated {
		logger.Warn("seed admin account created",
			"username", seedAdminUsername,
			"password", password,
			"action_required", "change this password immediately",
		)
	} else {
		logger.Info("seed admin account created", "username", seedAdminUsername)
	}

	return password, nil
}
