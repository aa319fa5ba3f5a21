package api

import (
	"errors"
	"net/http"

	"github.com/campuscore/campus-core/internal/audit"
	"github.com/campuscore/campus-core/internal/auth"
)

// handleIndex returns the login page data. A message query parameter set by
// an earlier redirect is echoed back for display.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"message": r.URL.Query().Get("message"),
	}
	if identity := identityFrom(r); identity != nil {
		data["identity"] = identity
	}
	writeJSON(w, http.StatusOK, data)
}

// handleLogin checks the submitted credentials and starts a session.
// Unknown username and wrong password produce the same message.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form data")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	outcome, account, err := s.authService.Login(r.Context(), username, password)
	if err != nil {
		// a store failure must not read as bad credentials
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "login unavailable")
		return
	}

	switch outcome {
	case auth.LoginDenied:
		redirectWithMessage(w, r, "/", "Invalid username or password")
		return
	case auth.LoginInactive:
		redirectWithMessage(w, r, "/", "Account not activated")
		return
	case auth.LoginOK:
	}

	session, err := s.authService.StartSession(r.Context(), account.Username, account.Role)
	if err != nil {
		s.logger.Error("starting session", "error", err, "username", account.Username)
		writeInternalError(w, "login unavailable")
		return
	}

	s.setSessionCookie(w, session)
	s.metrics.sessionsStarted.Inc()
	s.recordAudit(r.Context(), &audit.AuditLog{
		Action:     "login",
		EntityType: "session",
		Username:   account.Username,
		Role:       string(account.Role),
	})

	http.Redirect(w, r, roleHome(account.Role), http.StatusSeeOther)
}

// roleHome is the landing page for each role after login.
func roleHome(role auth.Role) string {
	switch role {
	case auth.RoleAdmin:
		return "/admin"
	case auth.RoleHod:
		return "/hod/requests"
	default:
		return "/dashboard"
	}
}

// handleRegister creates a new account. Non-admin roles come out inactive;
// the activation code is delivered out of band, never in the response.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form data")
		return
	}

	result, err := s.authService.Register(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("password"),
		r.PostFormValue("email"),
		auth.Role(r.PostFormValue("role")),
	)
	switch {
	case errors.Is(err, auth.ErrValidation), errors.Is(err, auth.ErrInvalidRole):
		redirectWithMessage(w, r, "/", "All fields are required")
		return
	case errors.Is(err, auth.ErrDuplicateIdentity):
		redirectWithMessage(w, r, "/", "Username or email already exists")
		return
	case err != nil:
		s.logger.Error("registration failed", "error", err)
		writeInternalError(w, "registration unavailable")
		return
	}

	s.recordAudit(r.Context(), &audit.AuditLog{
		Action:     "register",
		EntityType: "account",
		EntityID:   result.Account.Username,
		Username:   result.Account.Username,
		Role:       string(result.Account.Role),
	})

	if result.Account.IsActive {
		redirectWithMessage(w, r, "/", "Registration successful")
		return
	}
	redirectWithMessage(w, r, "/", "Registration successful. Check your email for the activation code")
}

// handleVerify activates an account from its email and activation code.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form data")
		return
	}
	email := r.PostFormValue("email")
	code := r.PostFormValue("code")

	ok, err := s.authService.VerifyActivation(r.Context(), email, code)
	if err != nil {
		s.logger.Error("activation failed", "error", err)
		writeInternalError(w, "activation unavailable")
		return
	}
	if !ok {
		redirectWithMessage(w, r, "/", "Invalid activation code")
		return
	}

	s.recordAudit(r.Context(), &audit.AuditLog{
		Action:     "activate",
		EntityType: "account",
		Details:    map[string]any{"via": "code"},
	})
	redirectWithMessage(w, r, "/", "Account activated. You can now log in")
}

// handleForgotPassword accepts a reset request. The response is the same
// whether or not the email exists, so the endpoint cannot be used to
// enumerate accounts. Delivery of the reset notice is out of band.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form data")
		return
	}
	email := r.PostFormValue("email")
	if email == "" {
		redirectWithMessage(w, r, "/", "Email is required")
		return
	}

	account, err := s.users.GetByEmail(r.Context(), email)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		// fall through to the uniform response
	case err != nil:
		s.logger.Error("password reset lookup failed", "error", err)
		writeInternalError(w, "reset unavailable")
		return
	default:
		s.logger.Info("password reset requested", "username", account.Username)
	}

	redirectWithMessage(w, r, "/", "If the email is registered, reset instructions have been sent")
}

// handleLogout ends the current session and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.sessionCfg.CookieName); err == nil && cookie.Value != "" {
		ended, err := s.authService.EndSession(r.Context(), cookie.Value)
		if err != nil {
			s.logger.Error("ending session", "error", err)
		}
		if ended {
			s.metrics.sessionsEnded.Inc()
			if identity := identityFrom(r); identity != nil {
				s.recordAudit(r.Context(), &audit.AuditLog{
					Action:     "logout",
					EntityType: "session",
					Username:   identity.Username,
					Role:       string(identity.Role),
				})
			}
		}
	}

	s.clearSessionCookie(w)
	redirectWithMessage(w, r, "/", "Logged out")
}
