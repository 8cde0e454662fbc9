// Package services contains the CLI's application services. The auth service
// drives the account flows and keeps the session tokens in the local
// metadata table, so a restarted CLI stays signed in.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/starterkit/internal/dbx"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/rpc"
)

// Metadata keys owned by the auth service.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyEmail        = "email"
)

// AuthService defines the account operations of the CLI. All methods honor
// context cancellation.
type AuthService interface {
	Restore(ctx context.Context) error
	SignedIn() bool
	Email(ctx context.Context) (string, error)

	Register(ctx context.Context, email string, password []byte) (string, error)
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	Verify(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, password []byte) error
	ChangeEmail(ctx context.Context, email string) error
	Profile(ctx context.Context) (*rpc.Profile, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger
}

// NewAuthService binds the API client to the local database. Token changes
// reported by the client, silent refreshes included, are written through.
func NewAuthService(c client.Client, db *sql.DB, logger logging.Logger) AuthService {
	s := &authService{client: c, db: db, logger: logger.With("module", "auth_service")}
	c.OnTokens(s.persistTokens)
	return s
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (a *authService) persistTokens(accessToken, refreshToken string) {
	ctx := context.Background()
	if err := a.saveTokens(ctx, accessToken, refreshToken); err != nil {
		a.logger.Error(ctx, "saving session tokens failed", "error", err)
	}
}

func (a *authService) saveTokens(ctx context.Context, accessToken, refreshToken string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		if refreshToken == "" {
			return repo.Delete(ctx, KeyAccessToken, KeyRefreshToken)
		}
		if err := repo.Set(ctx, KeyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyRefreshToken, []byte(refreshToken))
	})
}

// Restore loads a saved session into the client.
func (a *authService) Restore(ctx context.Context) error {
	repo := a.getMetadataRepo(a.db)

	refreshToken, err := repo.Get(ctx, KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}
	if len(refreshToken) == 0 {
		return nil
	}
	accessToken, err := repo.Get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("load access token: %w", err)
	}

	a.client.SetTokens(string(accessToken), string(refreshToken))
	return nil
}

func (a *authService) SignedIn() bool {
	_, refreshToken := a.client.Tokens()
	return refreshToken != ""
}

// Email returns the address last used to sign in, or "".
func (a *authService) Email(ctx context.Context) (string, error) {
	v, err := a.getMetadataRepo(a.db).Get(ctx, KeyEmail)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (a *authService) setEmail(ctx context.Context, email string) error {
	return a.getMetadataRepo(a.db).Set(ctx, KeyEmail, []byte(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *authService) Register(ctx context.Context, email string, password []byte) (string, error) {
	email = normalizeEmail(email)
	id, err := a.client.SignUp(ctx, email, password)
	if err != nil {
		return "", err
	}
	if err := a.setEmail(ctx, email); err != nil {
		return "", err
	}
	return id, nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	email = normalizeEmail(email)
	if err := a.client.SignIn(ctx, email, password); err != nil {
		return err
	}
	return a.setEmail(ctx, email)
}

// Logout revokes the session. The local copy is removed even when the
// server cannot be reached; that error is still returned.
func (a *authService) Logout(ctx context.Context) error {
	err := a.client.SignOut(ctx)
	if derr := a.getMetadataRepo(a.db).Delete(ctx, KeyAccessToken, KeyRefreshToken); derr != nil {
		return errors.Join(err, derr)
	}
	return err
}

func (a *authService) Verify(ctx context.Context, token string) error {
	return a.client.VerifyEmail(ctx, strings.TrimSpace(token))
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	return a.client.RequestPasswordReset(ctx, normalizeEmail(email))
}

func (a *authService) ResetPassword(ctx context.Context, token string, password []byte) error {
	return a.client.ResetPassword(ctx, strings.TrimSpace(token), password)
}

func (a *authService) ChangeEmail(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := a.client.ChangeEmail(ctx, email); err != nil {
		return err
	}
	return a.setEmail(ctx, email)
}

// Profile returns nil, nil when the server does not recognise the session.
func (a *authService) Profile(ctx context.Context) (*rpc.Profile, error) {
	p, err := a.client.CurrentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if p != nil && p.Email != "" {
		if err := a.setEmail(ctx, p.Email); err != nil {
			a.logger.Warn(ctx, "saving email failed", "error", err)
		}
	}
	return p, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
