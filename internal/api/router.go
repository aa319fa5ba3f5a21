package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscore/campus-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.sessionMiddleware)

	// Public surface: login page data, account flows, feeding sites
	r.Get("/", s.handleIndex)
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/verify", s.handleVerify)
	r.Post("/forgot-password", s.handleForgotPassword)
	r.Get("/logout", s.handleLogout)
	r.Get("/feeding-sites", s.handleListSites)
	r.Get("/feeding-sites/nearest", s.handleNearestSites)
	r.Get("/feeding-sites/{id}", s.handleGetSite)

	// Health and metrics
	r.Get("/healthz", s.handleHealth)
	if s.metricsCfg.Enabled {
		r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	}

	// Any authenticated user
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuthenticated)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/course-management", s.handleCourseManagement)
		r.Post("/requests", s.handleSubmitRequest)
		r.Get("/requests", s.handleMyRequests)
	})

	// Admin only
	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(auth.RoleAdmin))

		r.Get("/admin", s.handleAdminPanel)
		r.Post("/admin/activate", s.handleAdminActivate)
		r.Get("/admin/audit", s.handleAuditLog)
		r.Post("/feeding-sites", s.handleCreateSite)
		r.Patch("/feeding-sites/{id}", s.handleUpdateSite)
	})

	// Head of department only
	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(auth.RoleHod))

		r.Get("/hod/requests", s.handlePendingRequests)
		r.Post("/hod/process", s.handleProcessRequest)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthFunc != nil {
		if err := s.healthFunc(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "store unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
