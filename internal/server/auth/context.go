package auth

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/starterkit/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// WithUserID marks ctx as belonging to an authenticated user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

const expiredKey ctxKey = "tokenExpired"

// WithExpiredToken records that the caller presented an access token that
// has expired. The caller stays anonymous.
func WithExpiredToken(ctx context.Context) context.Context {
	return context.WithValue(ctx, expiredKey, true)
}

// TokenExpired reports whether WithExpiredToken was applied to ctx.
func TokenExpired(ctx context.Context) bool {
	v, _ := ctx.Value(expiredKey).(bool)
	return v
}

// Identify resolves an access token into ctx. A missing or invalid token
// leaves the caller anonymous; it never fails.
func Identify(ctx context.Context, token string, secretKey []byte) context.Context {
	if token == "" {
		return ctx
	}
	userID, err := GetUserIDFromToken(token, secretKey)
	switch {
	case err == nil:
		return WithUserID(ctx, userID)
	case errors.Is(err, common.ErrTokenExpired):
		return WithExpiredToken(ctx)
	}
	return ctx
}
