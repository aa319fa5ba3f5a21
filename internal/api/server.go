// Package api provides the HTTP server for Campus Core.
//
// It exposes the registration/activation/login flows, the role-gated
// dashboard data endpoints, the departmental request queue, and the feeding
// site listing. Handlers return plain JSON page data; rendering is left to
// the front end. Browser form flows answer with 303 redirects carrying a
// message query parameter.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/campuscore/campus-core/internal/audit"
	"github.com/campuscore/campus-core/internal/auth"
	"github.com/campuscore/campus-core/internal/feeding"
	"github.com/campuscore/campus-core/internal/infrastructure/config"
	"github.com/campuscore/campus-core/internal/infrastructure/logging"
	"github.com/campuscore/campus-core/internal/request"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.ServerConfig
	Session    config.SessionConfig
	Metrics    config.MetricsConfig
	Logger     *logging.Logger
	Auth       *auth.Service
	Users      auth.UserRepository
	Requests   *request.Service
	Feeding    *feeding.Service
	Audit      audit.Repository
	HealthFunc func(ctx context.Context) error // optional: backing store liveness
	Version    string
}

// Server is the HTTP server for Campus Core.
type Server struct {
	cfg         config.ServerConfig
	sessionCfg  config.SessionConfig
	metricsCfg  config.MetricsConfig
	logger      *logging.Logger
	authService *auth.Service
	users       auth.UserRepository
	requests    *request.Service
	feeding     *feeding.Service
	audit       audit.Repository
	healthFunc  func(ctx context.Context) error
	version     string
	metrics     *serverMetrics
	server      *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Requests == nil {
		return nil, fmt.Errorf("request service is required")
	}
	if deps.Feeding == nil {
		return nil, fmt.Errorf("feeding service is required")
	}
	// Audit is optional — flows still work without a trail

	return &Server{
		cfg:         deps.Config,
		sessionCfg:  deps.Session,
		metricsCfg:  deps.Metrics,
		logger:      deps.Logger,
		authService: deps.Auth,
		users:       deps.Users,
		requests:    deps.Requests,
		feeding:     deps.Feeding,
		audit:       deps.Audit,
		healthFunc:  deps.HealthFunc,
		version:     deps.Version,
		metrics:     newServerMetrics(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// setSessionCookie delivers the session token to the client. The cookie
// expires with the session and is marked Secure only when served over TLS.
func (s *Server) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt(s.authService.SessionTTL()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cfg.TLS.Enabled,
	})
}

// clearSessionCookie expires the session cookie on the client.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cfg.TLS.Enabled,
	})
}

// recordAudit writes an audit trail entry when a repository is wired.
// Failures are logged, never surfaced to the user flow.
func (s *Server) recordAudit(ctx context.Context, entry *audit.AuditLog) {
	if s.audit == nil {
		return
	}
	if entry.Source == "" {
		entry.Source = "web"
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("writing audit log", "error", err, "action", entry.Action)
	}
}
