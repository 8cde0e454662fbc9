// Package services contains server-side business logic. UserService covers
// email+password accounts: sign-up with email verification, sign-in,
// refresh token rotation, password reset and email change.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/dbx"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/auth"
	"github.com/dmitrijs2005/starterkit/internal/server/config"
	"github.com/dmitrijs2005/starterkit/internal/server/mail"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/repomanager"
)

const (
	AppName = "Starter Kit"

	VerificationTokenValidity  = 24 * time.Hour
	PasswordResetTokenValidity = 900 * time.Second
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	hasher                       auth.PasswordHasher
	mailer                       mail.Mailer
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	publicURL                    string
	now                          func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	mailer mail.Mailer, logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		hasher:                       hasher,
		mailer:                       mailer,
		logger:                       logger.With("module", "user_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		publicURL:                    strings.TrimRight(cfg.PublicURL, "/"),
		now:                          time.Now,
	}
}

// SignUp creates an unverified user and mails a verification link. A mail
// failure does not undo the sign-up, the user can ask for a new link by
// changing the email.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrUserExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID)

	if err := s.sendVerification(ctx, user.ID, user.Email); err != nil {
		s.logger.Error(ctx, "verification email failed", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// VerifyEmail consumes a verification token, marks the address verified
// and signs the user in.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*TokenPair, error) {
	var pair *TokenPair
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vt, err := s.consumeToken(ctx, tx, token, models.PurposeVerifyEmail)
		if err != nil {
			return err
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, vt.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		// the address changed after this link was sent
		if user.Email != vt.Email {
			return common.ErrInvalidToken
		}

		if err := s.repomanager.Users(tx).MarkEmailVerified(ctx, user.ID); err != nil {
			return fmt.Errorf("error verifying email: %w", err)
		}

		pair, err = s.generateTokenPair(ctx, user.ID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// SignIn checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, common.ErrEmailNotVerified
	}

	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken consumes a refresh token and returns a fresh TokenPair in the
// same transaction. A token can be exchanged only once. Expired tokens yield
// ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expires.Before(s.now()) {
			return common.ErrRefreshTokenExpired
		}
		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// SignOut revokes a refresh token. Unknown tokens are ignored.
func (s *UserService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// RequestPasswordReset mails a reset link when the address belongs to a
// user. It reports success either way.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info(ctx, "password reset for unknown email")
			return nil
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	if err := s.sendPasswordReset(ctx, user); err != nil {
		s.logger.Error(ctx, "password reset email failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *UserService) sendPasswordReset(ctx context.Context, user *models.User) error {
	raw, err := s.issueToken(ctx, user.ID, user.Email, models.PurposeResetPassword, PasswordResetTokenValidity)
	if err != nil {
		return err
	}

	msg, err := mail.PasswordResetEmail(AppName, user.Email, s.link("/reset-password", raw), "15 minutes")
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

// ResetPassword sets a new password from a reset link and signs out every
// existing session of the user.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vt, err := s.consumeToken(ctx, tx, token, models.PurposeResetPassword)
		if err != nil {
			return err
		}
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, vt.UserID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteForUser(ctx, vt.UserID); err != nil {
			return fmt.Errorf("error revoking sessions: %w", err)
		}
		return nil
	})
}

// ChangeEmail mirrors a new address onto the caller's profile. The address
// must be verified again.
func (s *UserService) ChangeEmail(ctx context.Context, newEmail string) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return common.ErrUnauthenticated
	}

	newEmail = NormalizeEmail(newEmail)
	if err := ValidateEmail(newEmail); err != nil {
		return err
	}

	if err := s.repomanager.Users(s.db).UpdateEmail(ctx, userID, newEmail); err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyExists):
			return common.ErrUserExists
		case errors.Is(err, common.ErrNotFound):
			return common.ErrUnauthenticated
		}
		return fmt.Errorf("error updating email: %w", err)
	}

	if err := s.sendVerification(ctx, userID, newEmail); err != nil {
		s.logger.Error(ctx, "verification email failed", "user_id", userID, "error", err)
	}
	return nil
}

// CurrentUser returns the caller's row, or nil for anonymous callers and
// callers whose row is gone.
func (s *UserService) CurrentUser(ctx context.Context) (*models.User, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, nil
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// OnUserDeleted is called when an account is removed. Profiles are kept.
func (s *UserService) OnUserDeleted(ctx context.Context, userID string) {
	s.logger.Info(ctx, "user deleted, profile kept", "user_id", userID)
}

// --- helpers below ---

func (s *UserService) sendVerification(ctx context.Context, userID, email string) error {
	raw, err := s.issueToken(ctx, userID, email, models.PurposeVerifyEmail, VerificationTokenValidity)
	if err != nil {
		return err
	}
	msg, err := mail.VerificationEmail(AppName, email, s.link("/verify-email", raw))
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

// issueToken replaces any pending token of the same purpose.
func (s *UserService) issueToken(ctx context.Context, userID, email string, purpose models.TokenPurpose, validity time.Duration) (string, error) {
	raw, hash, err := common.NewOneTimeToken()
	if err != nil {
		return "", err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.VerificationTokens(tx)
		if err := repo.DeleteForUser(ctx, userID, purpose); err != nil {
			return err
		}
		return repo.Create(ctx, &models.VerificationToken{
			TokenHash: hash,
			UserID:    userID,
			Email:     email,
			Purpose:   purpose,
			ExpiresAt: s.now().Add(validity),
		})
	})
	if err != nil {
		return "", fmt.Errorf("error issuing %s token: %w", purpose, err)
	}
	return raw, nil
}

func (s *UserService) consumeToken(ctx context.Context, tx dbx.DBTX, raw string, purpose models.TokenPurpose) (*models.VerificationToken, error) {
	if raw == "" {
		return nil, common.ErrInvalidToken
	}
	vt, err := s.repomanager.VerificationTokens(tx).Consume(ctx, common.HashToken(raw), purpose)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error consuming token: %w", err)
	}
	if vt.Expired(s.now()) {
		return nil, common.ErrTokenExpired
	}
	return vt, nil
}

func (s *UserService) link(path, token string) string {
	return s.publicURL + path + "?token=" + url.QueryEscape(token)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
