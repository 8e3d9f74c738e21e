package session

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/astroflix-site/reistream/internal/models"
)

const (
	MinUsernameLength = 6
	MinPasswordLength = 8
)

var (
	ErrMissingFields     = errors.New("all fields are required")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrUsernameTooShort  = errors.New("username must be at least 6 characters")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrProfileIncomplete = errors.New("username and email are required")
)

// ValidateRegistration applies the sign-up form rules before any network call.
// Lengths are counted in characters, not bytes.
func ValidateRegistration(req models.RegisterRequest, confirmPassword string) error {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" || confirmPassword == "" {
		return ErrMissingFields
	}
	if req.Password != confirmPassword {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(req.Username) < MinUsernameLength {
		return ErrUsernameTooShort
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidateProfile checks a profile edit
func ValidateProfile(update models.ProfileUpdate) error {
	if strings.TrimSpace(update.Username) == "" || strings.TrimSpace(update.Email) == "" {
		return ErrProfileIncomplete
	}
	return nil
}
