package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campuscore/campus-core/internal/audit"
	"github.com/campuscore/campus-core/internal/auth"
)

// handleAdminPanel returns the admin page data: every account with its
// activation state. Credential digests and activation codes are stripped
// by the Account JSON shape.
func (s *Server) handleAdminPanel(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("listing accounts", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	pending := 0
	for _, a := range accounts {
		if !a.IsActive {
			pending++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"identity": identityFrom(r),
		"users":    accounts,
		"pending":  pending,
		"message":  r.URL.Query().Get("message"),
	})
}

// handleAdminActivate activates an account directly, bypassing the code.
func (s *Server) handleAdminActivate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form data")
		return
	}
	username := r.PostFormValue("username")
	if username == "" {
		redirectWithMessage(w, r, "/admin", "Username is required")
		return
	}

	err := s.users.Activate(r.Context(), username)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		redirectWithMessage(w, r, "/admin", "No such user")
		return
	case err != nil:
		s.logger.Error("activating account", "error", err, "username", username)
		writeInternalError(w, "store unavailable")
		return
	}

	identity := identityFrom(r)
	s.recordAudit(r.Context(), &audit.AuditLog{
		Action:     "activate",
		EntityType: "account",
		EntityID:   username,
		Username:   identity.Username,
		Role:       string(identity.Role),
		Details:    map[string]any{"via": "admin"},
	})
	redirectWithMessage(w, r, "/admin", "Account activated")
}

// handleAuditLog returns the filtered audit trail.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "audit trail not enabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Username:   q.Get("username"),
		Role:       q.Get("role"),
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v) //nolint:errcheck // zero falls back to the default page size
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v) //nolint:errcheck // zero is the first page
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit logs", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
