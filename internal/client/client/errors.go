package client

import (
	"errors"

	"github.com/dmitrijs2005/starterkit/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// knownErrors are the server messages turned back into sentinels, so callers
// can use errors.Is across the wire.
var knownErrors = []error{
	common.ErrStorageDisabled,
	common.ErrEmailNotVerified,
	common.ErrInvalidCredentials,
	common.ErrRefreshTokenExpired,
	common.ErrUserExists,
	common.ErrNotFound,
	common.ErrInvalidEmail,
	common.ErrPasswordTooShort,
	common.ErrPasswordTooLong,
	common.ErrInvalidAvatarKey,
	common.ErrInvalidToken,
	common.ErrTokenExpired,
}
