package api

import (
	"net/http"
)

// handleDashboard returns the signed-in user's dashboard data: identity,
// enrolled courses and their own request history.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	courses, err := s.users.ListCourses(r.Context(), identity.Username)
	if err != nil {
		s.logger.Error("listing courses", "error", err, "username", identity.Username)
		writeInternalError(w, "store unavailable")
		return
	}

	requests, err := s.requests.ListForUser(r.Context(), identity.Username)
	if err != nil {
		s.logger.Error("listing requests", "error", err, "username", identity.Username)
		writeInternalError(w, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"courses":  courses,
		"requests": requests,
		"message":  r.URL.Query().Get("message"),
	})
}

// handleCourseManagement returns the course-management page data.
func (s *Server) handleCourseManagement(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	courses, err := s.users.ListCourses(r.Context(), identity.Username)
	if err != nil {
		s.logger.Error("listing courses", "error", err, "username", identity.Username)
		writeInternalError(w, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"courses":  courses,
		"message":  r.URL.Query().Get("message"),
	})
}
