package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/starterkit/internal/common"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return common.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword counts runes, not bytes.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	switch {
	case n < common.MinPasswordLength:
		return common.ErrPasswordTooShort
	case n > common.MaxPasswordLength:
		return common.ErrPasswordTooLong
	}
	return nil
}
