// Package refreshtokens provides a PostgreSQL-backed repository for the
// refresh tokens handed out on sign-in.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

// Repository persists refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Consume atomically removes the token and returns it. It returns
	// common.ErrNotFound when the token is absent or already consumed.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error

	// DeleteForUser revokes every session of userID.
	DeleteForUser(ctx context.Context, userID string) error
}
