// Package theme persists the UI colour theme in a cookie and resolves
// "system" through the Sec-CH-Prefers-Color-Scheme client hint.
package theme

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
)

type Theme string

const (
	Dark   Theme = "dark"
	Light  Theme = "light"
	System Theme = "system"

	Default = System
)

const (
	CookieName = "ui-theme"
	CookieTTL  = 365 * 24 * time.Hour

	// HintHeader is the client hint browsers send once asked via Accept-CH.
	HintHeader = "Sec-CH-Prefers-Color-Scheme"
)

func Parse(s string) (Theme, error) {
	switch t := Theme(s); t {
	case Dark, Light, System:
		return t, nil
	}
	return "", common.ErrInvalidTheme
}

// FromRequest reads the cookie, falling back to Default when it is absent
// or holds an unknown value.
func FromRequest(r *http.Request) Theme {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Default
	}
	t, err := Parse(c.Value)
	if err != nil {
		return Default
	}
	return t
}

// SetCookie stores t for a year. The cookie stays readable from scripts so
// pages can mirror it into local storage.
func SetCookie(w http.ResponseWriter, t Theme, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(t),
		Path:     "/",
		MaxAge:   int(CookieTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// Resolve turns t into dark or light for the first paint.
func Resolve(t Theme, r *http.Request) Theme {
	if t != System {
		return t
	}
	if r.Header.Get(HintHeader) == "dark" {
		return Dark
	}
	return Light
}

// AdvertiseHint asks the browser to send the colour scheme hint on later
// requests and marks responses as varying on it.
func AdvertiseHint(w http.ResponseWriter) {
	w.Header().Set("Accept-CH", HintHeader)
	w.Header().Add("Vary", HintHeader)
}
