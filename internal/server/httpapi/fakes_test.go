package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/auth"
	"github.com/dmitrijs2005/starterkit/internal/server/config"
	"github.com/dmitrijs2005/starterkit/internal/server/metrics"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/dmitrijs2005/starterkit/internal/server/objectstore"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
)

type fakeUsers struct {
	signUp        func(ctx context.Context, email, password string) (*models.User, error)
	signIn        func(ctx context.Context, email, password string) (*services.TokenPair, error)
	signOut       func(ctx context.Context, refreshToken string) error
	refresh       func(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	verify        func(ctx context.Context, token string) (*services.TokenPair, error)
	requestReset  func(ctx context.Context, email string) error
	resetPassword func(ctx context.Context, token, newPassword string) error
	changeEmail   func(ctx context.Context, newEmail string) error
}

func (f *fakeUsers) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	return f.signUp(ctx, email, password)
}
func (f *fakeUsers) SignIn(ctx context.Context, email, password string) (*services.TokenPair, error) {
	return f.signIn(ctx, email, password)
}
func (f *fakeUsers) SignOut(ctx context.Context, refreshToken string) error {
	return f.signOut(ctx, refreshToken)
}
func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.refresh(ctx, refreshToken)
}
func (f *fakeUsers) VerifyEmail(ctx context.Context, token string) (*services.TokenPair, error) {
	return f.verify(ctx, token)
}
func (f *fakeUsers) RequestPasswordReset(ctx context.Context, email string) error {
	return f.requestReset(ctx, email)
}
func (f *fakeUsers) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.resetPassword(ctx, token, newPassword)
}
func (f *fakeUsers) ChangeEmail(ctx context.Context, newEmail string) error {
	return f.changeEmail(ctx, newEmail)
}

// CurrentUser answers from the identified context.
func (f *fakeUsers) CurrentUser(ctx context.Context) (*models.User, error) {
	id, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return &models.User{ID: id, Email: id + "@b.co", EmailVerified: true}, nil
}

type fakeAvatars struct {
	status  objectstore.Status
	issue   func(ctx context.Context) (*services.UploadTarget, error)
	record  func(ctx context.Context, key string) error
	profile func(ctx context.Context) (*services.Profile, error)
}

func (f *fakeAvatars) StorageStatus(context.Context) objectstore.Status { return f.status }
func (f *fakeAvatars) IssueUploadURL(ctx context.Context) (*services.UploadTarget, error) {
	return f.issue(ctx)
}
func (f *fakeAvatars) RecordAvatarKey(ctx context.Context, key string) error {
	return f.record(ctx, key)
}
func (f *fakeAvatars) CurrentProfile(ctx context.Context) (*services.Profile, error) {
	return f.profile(ctx)
}

const testSecret = "k"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret
	cfg.AuthRateLimit = 100
	cfg.AuthRateBurst = 100
	return cfg
}

func newTestServer(u *fakeUsers, a *fakeAvatars) *Server {
	return NewServer(testConfig(), logging.Nop(), u, a, metrics.New())
}

func do(t *testing.T, h http.Handler, method, path, body string, mod ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mod {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, userID string) func(*http.Request) {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func cookie(name, value string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func accessCookie(t *testing.T, userID string) func(*http.Request) {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	return cookie(common.AccessTokenHeaderName, tok)
}
