package api

import (
	"errors"
	"net/http"

	"github.com/campuscore/campus-core/internal/audit"
	"github.com/campuscore/campus-core/internal/request"
)

// handleSubmitRequest queues a new request for the signed-in user.
func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form data")
		return
	}
	identity := identityFrom(r)

	req, err := s.requests.Submit(r.Context(), identity.Username,
		r.PostFormValue("category"), r.PostFormValue("details"))
	switch {
	case errors.Is(err, request.ErrValidation):
		redirectWithMessage(w, r, "/dashboard", "Category and details are required")
		return
	case err != nil:
		s.logger.Error("submitting request", "error", err, "username", identity.Username)
		writeInternalError(w, "store unavailable")
		return
	}

	s.recordAudit(r.Context(), &audit.AuditLog{
		Action:     "submit",
		EntityType: "request",
		EntityID:   req.ID,
		Username:   identity.Username,
		Role:       string(identity.Role),
		Details:    map[string]any{"category": req.Category},
	})
	redirectWithMessage(w, r, "/dashboard", "Request submitted")
}

// handleMyRequests returns the signed-in user's requests, newest first.
func (s *Server) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	requests, err := s.requests.ListForUser(r.Context(), identity.Username)
	if err != nil {
		s.logger.Error("listing requests", "error", err, "username", identity.Username)
		writeInternalError(w, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

// handlePendingRequests returns the departmental queue in submission order.
func (s *Server) handlePendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := s.requests.ListPending(r.Context())
	if err != nil {
		s.logger.Error("listing pending requests", "error", err)
		writeInternalError(w, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"identity": identityFrom(r),
		"requests": pending,
		"message":  r.URL.Query().Get("message"),
	})
}

// handleProcessRequest resolves a pending request as approved or rejected.
func (s *Server) handleProcessRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form data")
		return
	}
	id := r.PostFormValue("id")
	action := r.PostFormValue("action")

	req, err := s.requests.Process(r.Context(), id, action)
	switch {
	case errors.Is(err, request.ErrInvalidAction):
		redirectWithMessage(w, r, "/hod/requests", "Action must be approved or rejected")
		return
	case errors.Is(err, request.ErrNotFound):
		redirectWithMessage(w, r, "/hod/requests", "No such request")
		return
	case errors.Is(err, request.ErrAlreadyProcessed):
		redirectWithMessage(w, r, "/hod/requests", "Request already processed")
		return
	case err != nil:
		s.logger.Error("processing request", "error", err, "id", id)
		writeInternalError(w, "store unavailable")
		return
	}

	identity := identityFrom(r)
	s.recordAudit(r.Context(), &audit.AuditLog{
		Action:     "process",
		EntityType: "request",
		EntityID:   req.ID,
		Username:   identity.Username,
		Role:       string(identity.Role),
		Details:    map[string]any{"status": string(req.Status)},
	})
	redirectWithMessage(w, r, "/hod/requests", "Request "+string(req.Status))
}
