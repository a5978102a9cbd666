// Package validation provides request validation, password policy and text
// sanitisation shared by the HTTP handlers and services.
package validation

import (
	"errors"
	"unicode"
)

const (
	PasswordMinLength = 8
	// bcrypt ignores input past 72 bytes.
	PasswordMaxLength = 72
)

// ValidatePassword checks the registration password policy: at least eight
// characters with one uppercase letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return errors.New("password must be at least 8 characters long")
	}
	if len(password) > PasswordMaxLength {
		return errors.New("password must not exceed 72 bytes")
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	return nil
}
