package verificationtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/dbx"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (token_hash, user_id, email, purpose, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, t.TokenHash, t.UserID, t.Email, string(t.Purpose), t.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, tokenHash string, purpose models.TokenPurpose) (*models.VerificationToken, error) {
	query := `
		UPDATE verification_tokens SET used_at = now()
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL
		RETURNING user_id, email, expires_at
	`
	t := &models.VerificationToken{TokenHash: tokenHash, Purpose: purpose}
	err := r.db.QueryRowContext(ctx, query, tokenHash, string(purpose)).Scan(&t.UserID, &t.Email, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID string, purpose models.TokenPurpose) error {
	query := `
		DELETE FROM verification_tokens
		WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(purpose)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
