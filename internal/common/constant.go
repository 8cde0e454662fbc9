// Package common contains shared constants and sentinel errors used across
// starterkit components.
package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key and the cookie name used to
// carry the access token.
const AccessTokenHeaderName = "access_token"

// RefreshTokenCookieName holds the refresh token for browser sessions.
const RefreshTokenCookieName = "refresh_token"

// AvatarKeyRoot is the top-level object store namespace for profile images.
const AvatarKeyRoot = "avatars"

// PresignValidity bounds presigned upload and download URLs.
const PresignValidity = 15 * time.Minute

// Password length limits accepted on sign-up and reset.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// MaxAvatarSize is the largest image the client will upload.
const MaxAvatarSize = 5 << 20
