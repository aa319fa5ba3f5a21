package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// LoginOutcome is the three-way result of a credential check.
type LoginOutcome int

const (
	// LoginDenied means unknown username or wrong password. The two causes
	// are deliberately indistinguishable to the caller.
	LoginDenied LoginOutcome = iota

	// LoginInactive means the credentials are correct but the account has
	// not been activated yet.
	LoginInactive

	// LoginOK means the credentials are correct and the account is active.
	LoginOK
)

// RegisterResult reports a successful registration. ActivationCode is empty
// for admin accounts, which are created pre-activated.
type RegisterResult struct {
	Account        *Account
	ActivationCode string
}

// Service orchestrates credential hashing, account lookup, activation
// checks, and session issuance. All state lives in the injected stores.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	hasher   Hasher
	ttl      time.Duration
	logger   *slog.Logger
}

// NewService creates the auth service with injected stores and hasher.
func NewService(users UserRepository, sessions SessionRepository, hasher Hasher, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		ttl:      ttl,
		logger:   logger,
	}
}

// SessionTTL returns the validity window applied to issued sessions.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// Register creates a new account. Admin accounts come out active with no
// activation code; every other role starts inactive with a fresh code the
// caller is responsible for delivering. The code is never logged above
// debug level.
func (s *Service) Register(ctx context.Context, username, password, email string, role Role) (*RegisterResult, error) {
	if username == "" || password == "" || email == "" {
		return nil, ErrValidation
	}
	if !IsValidUsername(username) || !IsValidEmail(email) {
		return nil, ErrValidation
	}
	if role == "" {
		role = RoleStudent
	}
	if !IsValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     role == RoleAdmin,
	}
	if !account.IsActive {
		account.ActivationCode = uuid.NewString()
	}

	// Uniqueness is enforced by the store's indexes at write time; no
	// separate existence pre-check, which would race anyway.
	if err := s.users.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		"username", account.Username,
		"role", string(account.Role),
		"active", account.IsActive,
	)
	if account.ActivationCode != "" {
		s.logger.Debug("activation code issued",
			"username", account.Username,
			"code", account.ActivationCode,
		)
	}

	return &RegisterResult{Account: account, ActivationCode: account.ActivationCode}, nil
}

// VerifyActivation activates the inactive account matching both email and
// code. Returns true on success; false means no match and no mutation.
func (s *Service) VerifyActivation(ctx context.Context, email, code string) (bool, error) {
	if email == "" || code == "" {
		return false, nil
	}

	ok, err := s.users.VerifyActivation(ctx, email, code)
	if err != nil {
		return false, fmt.Errorf("verifying activation: %w", err)
	}

	if ok {
		s.logger.Info("account activated", "email", email)
	}
	return ok, nil
}

// Login checks credentials and returns a three-way outcome. Unknown username
// and wrong password both come back as LoginDenied; a store failure is
// returned as an error, never folded into a denial.
func (s *Service) Login(ctx context.Context, username, password string) (LoginOutcome, *Account, error) {
	if username == "" || password == "" {
		return LoginDenied, nil, nil
	}

	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginDenied, nil, nil
		}
		return LoginDenied, nil, fmt.Errorf("looking up account: %w", err)
	}

	match, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return LoginDenied, nil, fmt.Errorf("verifying password: %w", err)
	}
	if !match {
		return LoginDenied, nil, nil
	}

	if !account.IsActive {
		return LoginInactive, account, nil
	}

	return LoginOK, account, nil
}

// StartSession issues a fresh opaque token for the given identity and
// persists it with the configured TTL. Returns the session carrying the
// token and timestamps the caller needs for cookie-setting.
func (s *Service) StartSession(ctx context.Context, username string, role Role) (*Session, error) {
	session := &Session{
		Token:    uuid.NewString(),
		Username: username,
		Role:     role,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session started", "username", username, "role", string(role))
	return session, nil
}

// EndSession deletes the session for the token. Idempotent: ending an
// absent token returns false without error.
func (s *Service) EndSession(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	existed, err := s.sessions.Delete(ctx, token)
	if err != nil {
		return false, err
	}

	if existed {
		s.logger.Info("session ended")
	}
	return existed, nil
}

// ResolveSession looks up a token, verifies the session is inside its TTL,
// and refreshes last_access. The store's own expiry is not trusted on its
// own: a stale row that slipped past the backend is still rejected here.
func (s *Service) ResolveSession(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now().UTC(), s.ttl) {
		// best effort: the reaper or key TTL will catch it otherwise
		_, _ = s.sessions.Delete(ctx, token) //nolint:errcheck // expiry cleanup is advisory
		return nil, ErrSessionNotFound
	}

	return &Identity{Username: session.Username, Role: session.Role}, nil
}

// ReapExpiredSessions runs DeleteExpired on an interval until the context
// is cancelled. Backends with native expiry make this a cheap no-op.
func (s *Service) ReapExpiredSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.sessions.DeleteExpired(ctx)
			if err != nil {
				s.logger.Error("reaping expired sessions", "error", err)
				continue
			}
			if count > 0 {
				s.logger.Debug("reaped expired sessions", "count", count)
			}
		}
	}
}
