// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these values.
// Messages are shown to end users as is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Generic service errors.
	ErrInternal        = errors.New("internal error")
	ErrUnauthenticated = errors.New("Unauthenticated")

	// Account errors.
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailNotVerified   = errors.New("Email address is not verified")
	ErrInvalidEmail       = errors.New("Invalid email address")
	ErrPasswordTooShort   = errors.New("Password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("Password must be at most 128 characters")

	// Token errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Avatar and storage errors.
	ErrInvalidAvatarKey = errors.New("Invalid avatar key.")
	ErrStorageDisabled  = errors.New("Uploads are disabled")

	// Preferences.
	ErrInvalidTheme = errors.New("Invalid theme provided")
)
