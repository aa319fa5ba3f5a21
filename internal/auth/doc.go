// Package auth provides authentication and authorisation for Campus Core.
//
// It implements a 3-tier role model (student → hod → admin) with:
//   - Pluggable credential hashing: unsalted SHA-256 (legacy default) or
//     Argon2id in PHC string format, selected via configuration
//   - Email activation codes: non-admin accounts are created inactive and
//     must verify a one-time code before login succeeds
//   - Opaque session tokens with a fixed 5-minute validity window anchored
//     to creation time, stored in SQLite or Redis
//   - A seed step that creates the initial admin account on first boot
//
// Sessions snapshot the role at login: changing an account's role does not
// change the authorisation level of sessions already issued. Expiry is
// enforced both by the store (reaper or native TTL) and by the service on
// every resolve, so a stale row is never trusted.
package auth
