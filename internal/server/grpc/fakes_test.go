package grpc

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/logging"
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

func newServer(u *fakeUsers, a *fakeAvatars) *GRPCServer {
	s, _ := NewGRPCServer("127.0.0.1:0", logging.Nop(), u, a, metrics.New(), "k")
	return s
}
