// Package httpapi serves the JSON API under /api, the prometheus endpoint
// and, through registrars, the server-rendered pages. It owns the shared
// HTTP middleware: metrics, CORS, caller identification and rate limiting.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/config"
	"github.com/dmitrijs2005/starterkit/internal/server/metrics"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/dmitrijs2005/starterkit/internal/server/objectstore"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

type userSvc interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	SignOut(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	VerifyEmail(ctx context.Context, token string) (*services.TokenPair, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangeEmail(ctx context.Context, newEmail string) error
	CurrentUser(ctx context.Context) (*models.User, error)
}

type avatarSvc interface {
	StorageStatus(ctx context.Context) objectstore.Status
	IssueUploadURL(ctx context.Context) (*services.UploadTarget, error)
	RecordAvatarKey(ctx context.Context, key string) error
	CurrentProfile(ctx context.Context) (*services.Profile, error)
}

// Registrar adds routes to the root router, after the API ones.
type Registrar func(r *mux.Router)

type Server struct {
	address         string
	users           userSvc
	avatars         avatarSvc
	metrics         *metrics.Metrics
	logger          logging.Logger
	jwtSecret       []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	cookieSecure    bool
	cors            *corsMiddleware
	limiter         *rateLimiter
}

func NewServer(cfg *config.Config, l logging.Logger, us userSvc, as avatarSvc, m *metrics.Metrics) *Server {
	logger := l.With("module", "http_server")
	return &Server{
		address:         cfg.HTTPAddress,
		users:           us,
		avatars:         as,
		metrics:         m,
		logger:          logger,
		jwtSecret:       []byte(cfg.SecretKey),
		accessValidity:  cfg.AccessTokenValidityDuration,
		refreshValidity: cfg.RefreshTokenValidityDuration,
		cookieSecure:    cfg.CookieSecure,
		cors:            newCORSMiddleware(cfg.CORSOrigins),
		limiter:         newRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst, logger),
	}
}

// Handler builds the root router.
func (s *Server) Handler(extra ...Registrar) http.Handler {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware, s.identify)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})

	authR := api.PathPrefix("/auth").Subrouter()
	authR.Use(s.limiter.Handler)
	authR.HandleFunc("/sign-up", s.signUp).Methods(http.MethodPost)
	authR.HandleFunc("/sign-in", s.signIn).Methods(http.MethodPost)
	authR.HandleFunc("/sign-out", s.signOut).Methods(http.MethodPost)
	authR.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)
	authR.HandleFunc("/verify-email", s.verifyEmail).Methods(http.MethodPost)
	authR.HandleFunc("/forgot-password", s.forgotPassword).Methods(http.MethodPost)
	authR.HandleFunc("/reset-password", s.resetPassword).Methods(http.MethodPost)

	api.HandleFunc("/session", s.session).Methods(http.MethodGet)
	api.HandleFunc("/storage/status", s.storageStatus).Methods(http.MethodGet)
	api.HandleFunc("/avatar/upload-url", s.issueUploadURL).Methods(http.MethodPost)
	api.HandleFunc("/avatar", s.recordAvatarKey).Methods(http.MethodPost)
	api.HandleFunc("/profile", s.profile).Methods(http.MethodGet)
	api.HandleFunc("/profile/email", s.changeEmail).Methods(http.MethodPatch)
	api.HandleFunc("/theme", s.getTheme).Methods(http.MethodGet)
	api.HandleFunc("/theme", s.setTheme).Methods(http.MethodPost)

	for _, reg := range extra {
		reg(r)
	}

	// outside the router so preflight requests reach it for any path
	return s.cors.Handler(r)
}

// Run serves h until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, h http.Handler) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
