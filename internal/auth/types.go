package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// emailPattern is a permissive shape check: something@something.something.
// Real ownership is proven by the activation code, not by parsing.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 1-64 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// IsValidEmail checks if an email address has a plausible shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleStudent is the default role for self-registered accounts.
	// Access to the student dashboard, course management and request submission.
	RoleStudent Role = "student"

	// RoleHod is a head-of-department account. Sees the departmental
	// request queue and approves or rejects pending requests.
	RoleHod Role = "hod"

	// RoleAdmin has full control: account activation, user listing,
	// feeding-site management. Admin accounts are created pre-activated.
	RoleAdmin Role = "admin"
)

// ValidRoles is the closed set of roles an account may hold.
var ValidRoles = []Role{RoleStudent, RoleHod, RoleAdmin}

// IsValidRole returns true if the role is a member of the closed role set.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Account represents a registered user of the system.
//
// Admin accounts are created active with no activation code; every other
// role starts inactive with a freshly generated code that must be verified
// before login succeeds.
type Account struct {
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // never serialised
	Role           Role      `json:"role"`
	IsActive       bool      `json:"is_active"`
	ActivationCode string    `json:"-"` // never serialised
	CreatedAt      time.Time `json:"created_at"`
}

// Course is a single enrolment shown on the student dashboard.
type Course struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Session maps an opaque token to an authenticated identity. The role is a
// snapshot taken at login — a later role change on the account does not
// affect sessions issued before it.
type Session struct {
	Token      string    `json:"-"` // never serialised
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	LastAccess time.Time `json:"last_access"`
}

// ExpiresAt returns the absolute instant the session stops being valid.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// Expired reports whether the session is past its TTL at the given instant.
// Validity is anchored to creation time, not last access.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.CreatedAt.Add(ttl))
}

// Identity is the resolved requester attached to a request context by the
// session middleware.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Sentinel errors for auth operations.
var (
	ErrValidation        = errors.New("missing or malformed required field")
	ErrDuplicateIdentity = errors.New("username or email already exists")
	ErrUnauthenticated   = errors.New("invalid username or password")
	ErrAccountInactive   = errors.New("account is not activated")
	ErrUserNotFound      = errors.New("user not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidRole       = errors.New("invalid role")
	ErrUnsupportedScheme = errors.New("unsupported password scheme")
)
