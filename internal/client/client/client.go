package client

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/rpc"
)

// Client is the account API as the CLI sees it. Calls made after SignIn or
// VerifyEmail carry the session's access token.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email string, password []byte) (string, error)
	SignIn(ctx context.Context, email string, password []byte) error
	SignOut(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, password []byte) error
	ChangeEmail(ctx context.Context, email string) error

	IssueUploadURL(ctx context.Context) (*rpc.IssueUploadURLResponse, error)
	RecordAvatarKey(ctx context.Context, key string) error
	CurrentProfile(ctx context.Context) (*rpc.Profile, error)
	StorageStatus(ctx context.Context) (*rpc.StorageStatusResponse, error)

	SetTokens(accessToken, refreshToken string)
	Tokens() (accessToken, refreshToken string)
	OnTokens(fn func(accessToken, refreshToken string))
}
