package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/client/config"
	"github.com/dmitrijs2005/starterkit/internal/client/services"
	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/netx"
	"github.com/dmitrijs2005/starterkit/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	signedIn bool
	email    string
	pingErr  error
	err      error
	profile  *rpc.Profile

	gotEmail    string
	gotPassword string
	gotToken    string
	closed      bool
}

func (f *fakeAuth) Restore(context.Context) error { return nil }
func (f *fakeAuth) SignedIn() bool                { return f.signedIn }
func (f *fakeAuth) Email(context.Context) (string, error) {
	return f.email, nil
}
func (f *fakeAuth) Register(_ context.Context, email string, pw []byte) (string, error) {
	f.gotEmail, f.gotPassword = email, string(pw)
	return "u-1", f.err
}
func (f *fakeAuth) Login(_ context.Context, email string, pw []byte) error {
	f.gotEmail, f.gotPassword = email, string(pw)
	if f.err == nil {
		f.signedIn, f.email = true, email
	}
	return f.err
}
func (f *fakeAuth) Logout(context.Context) error {
	f.signedIn = false
	return f.err
}
func (f *fakeAuth) Verify(_ context.Context, token string) error {
	f.gotToken = token
	return f.err
}
func (f *fakeAuth) ForgotPassword(_ context.Context, email string) error {
	f.gotEmail = email
	return f.err
}
func (f *fakeAuth) ResetPassword(_ context.Context, token string, pw []byte) error {
	f.gotToken, f.gotPassword = token, string(pw)
	return f.err
}
func (f *fakeAuth) ChangeEmail(_ context.Context, email string) error {
	f.gotEmail = email
	return f.err
}
func (f *fakeAuth) Profile(context.Context) (*rpc.Profile, error) { return f.profile, f.err }
func (f *fakeAuth) Ping(context.Context) error                    { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error                   { f.closed = true; return nil }

type fakeAvatars struct {
	status  *rpc.StorageStatusResponse
	profile *rpc.Profile
	err     error
	gotPath string
}

func (f *fakeAvatars) Status(context.Context) (*rpc.StorageStatusResponse, error) {
	return f.status, nil
}

func (f *fakeAvatars) Upload(_ context.Context, path string, progress netx.Progress) (*rpc.Profile, error) {
	f.gotPath = path
	if f.err != nil {
		return nil, f.err
	}
	progress(50, 100)
	progress(100, 100)
	return f.profile, nil
}

func newTestApp(t *testing.T, auth *fakeAuth, avatars *fakeAvatars) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &App{
		config:        &config.Config{ServerEndpointAddr: "127.0.0.1:50051"},
		authService:   auth,
		avatarService: avatars,
		logger:        logging.Nop(),
		reader:        bufio.NewReader(strings.NewReader("")),
		out:           out,
	}, out
}

// stubInput feeds text prompts and password prompts from separate queues.
func stubInput(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origText, origPw := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ *bufio.Reader, _ string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		s := passwords[0]
		passwords = passwords[1:]
		return []byte(s), nil
	}
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })
}

func TestRegister(t *testing.T) {
	auth := &fakeAuth{}
	app, out := newTestApp(t, auth, &fakeAvatars{})
	stubInput(t, []string{"a@example.com"}, []string{"long password", "long password"})

	require.NoError(t, app.Register(context.Background()))
	assert.Equal(t, "a@example.com", auth.gotEmail)
	assert.Equal(t, "long password", auth.gotPassword)
	assert.Contains(t, out.String(), "verify <token>")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	auth := &fakeAuth{}
	app, _ := newTestApp(t, auth, &fakeAvatars{})
	stubInput(t, []string{"a@example.com"}, []string{"one password", "another one"})

	err := app.Register(context.Background())
	assert.ErrorIs(t, err, errPasswordMismatch)
	assert.Empty(t, auth.gotEmail, "server must not be called")
}

func TestLogin(t *testing.T) {
	auth := &fakeAuth{}
	app, out := newTestApp(t, auth, &fakeAvatars{})
	stubInput(t, []string{"a@example.com"}, []string{"pw"})

	require.NoError(t, app.Login(context.Background()))
	assert.True(t, app.isLoggedIn())
	assert.Contains(t, out.String(), "Signed in.")
}

func TestLogin_Failure(t *testing.T) {
	auth := &fakeAuth{err: common.ErrEmailNotVerified}
	app, _ := newTestApp(t, auth, &fakeAvatars{})
	stubInput(t, []string{"a@example.com"}, []string{"pw"})

	err := app.Login(context.Background())
	assert.ErrorIs(t, err, common.ErrEmailNotVerified)
	assert.False(t, app.isLoggedIn())
}

func TestLogout_OfflineIsNotAnError(t *testing.T) {
	auth := &fakeAuth{signedIn: true, err: client.ErrUnavailable}
	app, out := newTestApp(t, auth, &fakeAvatars{})

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.isLoggedIn())
	assert.Contains(t, out.String(), "removed locally only")
}

func TestVerifyForgotResetEmail(t *testing.T) {
	auth := &fakeAuth{}
	app, out := newTestApp(t, auth, &fakeAvatars{})
	ctx := context.Background()

	require.NoError(t, app.Verify(ctx, "tok"))
	assert.Equal(t, "tok", auth.gotToken)

	stubInput(t, []string{"a@example.com", "b@example.com"}, []string{"new password", "new password"})

	require.NoError(t, app.Forgot(ctx))
	assert.Equal(t, "a@example.com", auth.gotEmail)

	require.NoError(t, app.Reset(ctx, "reset-tok"))
	assert.Equal(t, "reset-tok", auth.gotToken)
	assert.Equal(t, "new password", auth.gotPassword)

	require.NoError(t, app.ChangeEmail(ctx))
	assert.Equal(t, "b@example.com", auth.gotEmail)

	assert.Contains(t, out.String(), "Password changed.")
	assert.Contains(t, out.String(), "Email changed.")
}

func TestProfile(t *testing.T) {
	auth := &fakeAuth{}
	app, out := newTestApp(t, auth, &fakeAvatars{})

	require.NoError(t, app.Profile(context.Background()))
	assert.Contains(t, out.String(), "Not signed in.")

	out.Reset()
	auth.profile = &rpc.Profile{ID: "u-1", Email: "a@example.com", EmailVerified: true, AvatarURL: "https://bucket.test/a?sig=1"}
	require.NoError(t, app.Profile(context.Background()))
	assert.Contains(t, out.String(), "Email:    a@example.com")
	assert.Contains(t, out.String(), "Verified: yes")
	assert.Contains(t, out.String(), "Avatar:   https://bucket.test/a?sig=1")
}

func TestStatus(t *testing.T) {
	auth := &fakeAuth{signedIn: true, email: "a@example.com"}
	avatars := &fakeAvatars{status: &rpc.StorageStatusResponse{Missing: []string{"R2_BUCKET", "R2_ENDPOINT"}}}
	app, out := newTestApp(t, auth, avatars)

	require.NoError(t, app.Status(context.Background()))
	s := out.String()
	assert.Contains(t, s, "Server:  online (127.0.0.1:50051)")
	assert.Contains(t, s, "Session: signed in as a@example.com")
	assert.Contains(t, s, "Uploads: disabled (missing: R2_BUCKET, R2_ENDPOINT)")
}

func TestStatus_Offline(t *testing.T) {
	auth := &fakeAuth{pingErr: client.ErrUnavailable}
	app, out := newTestApp(t, auth, &fakeAvatars{})

	require.NoError(t, app.Status(context.Background()))
	assert.Contains(t, out.String(), "Server:  offline")
	assert.Contains(t, out.String(), "Session: not signed in")
	assert.NotContains(t, out.String(), "Uploads")
}

func TestAvatar(t *testing.T) {
	avatars := &fakeAvatars{profile: &rpc.Profile{AvatarURL: "https://bucket.test/k?sig=get"}}
	app, out := newTestApp(t, &fakeAuth{signedIn: true}, avatars)

	require.NoError(t, app.Avatar(context.Background(), "/tmp/me.png"))
	assert.Equal(t, "/tmp/me.png", avatars.gotPath)
	assert.Contains(t, out.String(), "Uploading:  50%")
	assert.Contains(t, out.String(), "Uploading: 100%")
	assert.Contains(t, out.String(), "https://bucket.test/k?sig=get")
}

func TestAvatar_Error(t *testing.T) {
	avatars := &fakeAvatars{err: &services.StorageDisabledError{Missing: []string{"R2_BUCKET"}}}
	app, _ := newTestApp(t, &fakeAuth{signedIn: true}, avatars)

	err := app.Avatar(context.Background(), "/tmp/me.png")
	require.Error(t, err)
	assert.Equal(t, "Uploads are disabled. Missing: R2_BUCKET", describeError(err))
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "Please login first", describeError(client.ErrUnauthorized))
	assert.Equal(t, "Please login first", describeError(common.ErrRefreshTokenExpired))
	assert.Equal(t, "Uploads are disabled", describeError(&services.StorageDisabledError{}))
	assert.Equal(t, "Something went wrong on the server", describeError(common.ErrInternal))
	assert.Equal(t, common.ErrUserExists.Error(), describeError(common.ErrUserExists))
}

func TestSetModeAndStatusLine(t *testing.T) {
	auth := &fakeAuth{}
	app, out := newTestApp(t, auth, &fakeAvatars{})

	assert.Equal(t, "", app.getStatus())

	app.setMode(ModeOnline)
	assert.Contains(t, out.String(), "Server is online")
	assert.Equal(t, "(online)", app.getStatus())

	out.Reset()
	app.setMode(ModeOnline)
	assert.Empty(t, out.String(), "no message when the mode does not change")

	auth.signedIn, auth.email = true, "a@example.com"
	assert.Equal(t, "(a@example.com online)", app.getStatus())
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	auth := &fakeAuth{}
	app, _ := newTestApp(t, auth, &fakeAvatars{})
	app.out = io.Discard

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return app.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestClose_RunsClosers(t *testing.T) {
	app, _ := newTestApp(t, &fakeAuth{}, &fakeAvatars{})
	var order []string
	app.closers = []io.Closer{
		closerFunc(func() error { order = append(order, "client"); return nil }),
		closerFunc(func() error { order = append(order, "db"); return errors.New("ignored") }),
	}

	app.close()
	assert.Equal(t, []string{"client", "db"}, order)
}
