package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/starterkit/internal/server/metrics"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
	"github.com/dmitrijs2005/starterkit/internal/server/theme"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token    string `json:"token"`
	Password string `json:"password,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type themeBody struct {
	Theme string `json:"theme"`
}

type sessionUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user"`
}

func (s *Server) event(name string) {
	if s.metrics != nil {
		s.metrics.RecordEvent(name)
	}
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.event(metrics.EventSignUp)
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": user.ID, "email": user.Email})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	pair, err := s.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.event(metrics.EventSignIn)
	s.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.SignOut(r.Context(), refreshTokenFrom(r, req.RefreshToken)); err != nil {
		s.fail(w, r, err)
		return
	}

	s.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), refreshTokenFrom(r, req.RefreshToken))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	pair, err := s.users.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.event(metrics.EventEmailVerified)
	s.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}

	s.event(metrics.EventPasswordReset)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.CurrentUser(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		User:          &sessionUser{ID: user.ID, Email: user.Email, EmailVerified: user.EmailVerified},
	})
}

func (s *Server) storageStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.avatars.StorageStatus(r.Context()))
}

func (s *Server) issueUploadURL(w http.ResponseWriter, r *http.Request) {
	target, err := s.avatars.IssueUploadURL(r.Context())
	if err != nil {
		var disabled *services.StorageDisabledError
		if errors.As(err, &disabled) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"enabled": false,
				"missing": disabled.Missing,
				"error":   disabled.Error(),
			})
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (s *Server) recordAvatarKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.avatars.RecordAvatarKey(r.Context(), req.Key); err != nil {
		s.fail(w, r, err)
		return
	}

	s.event(metrics.EventAvatarUpdated)
	w.WriteHeader(http.StatusNoContent)
}

// profile answers anonymous callers with a JSON null.
func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	p, err := s.avatars.CurrentProfile(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) changeEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.ChangeEmail(r.Context(), req.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Theme: string(theme.FromRequest(r))})
}

func (s *Server) setTheme(w http.ResponseWriter, r *http.Request) {
	var req themeBody
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	t, err := theme.Parse(req.Theme)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	theme.SetCookie(w, t, s.cookieSecure)
	writeJSON(w, http.StatusOK, themeBody{Theme: string(t)})
}
