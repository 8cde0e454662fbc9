package rpc

import "time"

type Empty struct{}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// TokenResponse is returned by every call that signs the user in.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type ChangeEmailRequest struct {
	Email string `json:"email"`
}

type IssueUploadURLResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RecordAvatarKeyRequest struct {
	Key string `json:"key"`
}

type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	AvatarKey     string `json:"avatar_key,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

// ProfileResponse carries a nil Profile for anonymous callers.
type ProfileResponse struct {
	Profile *Profile `json:"profile"`
}

type StorageStatusResponse struct {
	Enabled bool     `json:"enabled"`
	Missing []string `json:"missing"`
}
