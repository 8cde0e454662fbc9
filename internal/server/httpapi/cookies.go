package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
)

func (s *Server) setAuthCookies(w http.ResponseWriter, p *services.TokenPair) {
	http.SetCookie(w, s.authCookie(common.AccessTokenHeaderName, p.AccessToken, int(s.accessValidity.Seconds())))
	http.SetCookie(w, s.authCookie(common.RefreshTokenCookieName, p.RefreshToken, int(s.refreshValidity.Seconds())))
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.authCookie(common.AccessTokenHeaderName, "", -1))
	http.SetCookie(w, s.authCookie(common.RefreshTokenCookieName, "", -1))
}

func (s *Server) authCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cookieSecure,
	}
}

func refreshTokenFrom(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		return c.Value
	}
	return ""
}
