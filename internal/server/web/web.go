// Package web renders the server-side pages. Guards redirect visitors based
// on the identity the API middleware put in the request context.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/auth"
	"github.com/dmitrijs2005/starterkit/internal/server/objectstore"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
	"github.com/dmitrijs2005/starterkit/internal/server/theme"
	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	SignInPath = "/sign-in"
	HomePath   = "/"
)

type profileSource interface {
	StorageStatus(ctx context.Context) objectstore.Status
	CurrentProfile(ctx context.Context) (*services.Profile, error)
}

type Pages struct {
	avatars   profileSource
	logger    logging.Logger
	templates map[string]*template.Template
}

var pageNames = []string{"home", "account", "sign-in", "sign-up", "forgot-password", "reset-password", "verify-email"}

func NewPages(avatars profileSource, logger logging.Logger) (*Pages, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	p := &Pages{
		avatars:   avatars,
		logger:    logger.With("module", "web"),
		templates: make(map[string]*template.Template, len(pageNames)),
	}
	for _, name := range pageNames {
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.templates[name] = t
	}
	return p, nil
}

// Register adds the page routes to r.
func (p *Pages) Register(r *mux.Router) {
	r.Handle(HomePath, p.page("home", "Home", nil)).Methods(http.MethodGet)
	r.Handle("/account", RequireAuth(p.page("account", "Account", p.accountData))).Methods(http.MethodGet)
	r.Handle(SignInPath, RequireGuest(p.page("sign-in", "Sign in", nil))).Methods(http.MethodGet)
	r.Handle("/sign-up", RequireGuest(p.page("sign-up", "Sign up", nil))).Methods(http.MethodGet)
	r.Handle("/forgot-password", RequireGuest(p.page("forgot-password", "Forgot password", nil))).Methods(http.MethodGet)
	r.Handle("/reset-password", p.page("reset-password", "Reset password", nil)).Methods(http.MethodGet)
	r.Handle("/verify-email", p.page("verify-email", "Verify email", nil)).Methods(http.MethodGet)
}

func signedIn(r *http.Request) bool {
	_, ok := auth.UserIDFromContext(r.Context())
	return ok
}

// RequireAuth sends anonymous visitors to the sign-in page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !signedIn(r) {
			http.Redirect(w, r, SignInPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireGuest sends signed-in visitors home.
func RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if signedIn(r) {
			http.Redirect(w, r, HomePath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type pageData struct {
	AppName           string
	Title             string
	Theme             theme.Theme
	Preference        theme.Theme
	Themes            []theme.Theme
	SignedIn          bool
	Token             string
	Profile           *services.Profile
	Storage           objectstore.Status
	MinPasswordLength int
	MaxPasswordLength int
	MaxAvatarSize     int
}

func (p *Pages) page(name, title string, fill func(r *http.Request, d *pageData) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pref := theme.FromRequest(r)
		d := &pageData{
			AppName:           services.AppName,
			Title:             title,
			Theme:             theme.Resolve(pref, r),
			Preference:        pref,
			Themes:            []theme.Theme{theme.System, theme.Light, theme.Dark},
			SignedIn:          signedIn(r),
			Token:             r.URL.Query().Get("token"),
			MinPasswordLength: common.MinPasswordLength,
			MaxPasswordLength: common.MaxPasswordLength,
			MaxAvatarSize:     common.MaxAvatarSize,
		}
		if fill != nil {
			if err := fill(r, d); err != nil {
				p.logger.Error(r.Context(), "page data failed", "page", name, "error", err)
				http.Error(w, common.ErrInternal.Error(), http.StatusInternalServerError)
				return
			}
		}

		theme.AdvertiseHint(w)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := p.templates[name].ExecuteTemplate(w, "layout", d); err != nil {
			p.logger.Error(r.Context(), "render failed", "page", name, "error", err)
		}
	})
}

func (p *Pages) accountData(r *http.Request, d *pageData) error {
	profile, err := p.avatars.CurrentProfile(r.Context())
	if err != nil {
		return err
	}
	d.Profile = profile
	d.Storage = p.avatars.StorageStatus(r.Context())
	return nil
}
