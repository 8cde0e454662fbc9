// Package users declares the repository contract for user profiles.
package users

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

type Repository interface {
	// Create inserts a new unverified user. A taken email yields
	// common.ErrAlreadyExists.
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	// UpdateEmail replaces the email and clears the verified flag.
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetAvatarKey(ctx context.Context, id, key string) error
}
