// Package models holds the server-side persisted records.
package models

import "time"

// User is the profile row created on sign-up. AvatarKey is empty until the
// first avatar upload is recorded.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	AvatarKey     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
