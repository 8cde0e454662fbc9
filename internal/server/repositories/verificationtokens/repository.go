// Package verificationtokens stores hashed one-time tokens sent in email
// verification and password reset links.
package verificationtokens

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.VerificationToken) error
	// Consume marks an unused token as used and returns it. Unknown or
	// already used tokens yield common.ErrNotFound. Expiry is left to the
	// caller.
	Consume(ctx context.Context, tokenHash string, purpose models.TokenPurpose) (*models.VerificationToken, error)
	// DeleteForUser drops pending tokens of the given purpose.
	DeleteForUser(ctx context.Context, userID string, purpose models.TokenPurpose) error
}
