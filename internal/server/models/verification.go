package models

import "time"

// TokenPurpose tells email-link tokens apart.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify-email"
	PurposeResetPassword TokenPurpose = "reset-password"
)

// VerificationToken is a one-time email link token. Only the sha256 of the
// raw token is stored.
type VerificationToken struct {
	TokenHash string
	UserID    string
	Email     string
	Purpose   TokenPurpose
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
