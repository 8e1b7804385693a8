package util

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength  = 8
	maxPasswordBytes   = 72
	DefaultHashCost    = 12
	errPasswordLength  = "Password must be at least 8 characters long."
	errPasswordTooLong = "Password must be at most 72 bytes long."
	errPasswordClasses = "Password must include an uppercase letter, a lowercase letter and a number."
)

// ValidatePassword is the default password policy.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return errors.New(errPasswordLength)
	}
	// bcrypt refuses longer input.
	if len(password) > maxPasswordBytes {
		return errors.New(errPasswordTooLong)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return errors.New(errPasswordClasses)
	}
	return nil
}

func HashPassword(password string, cost int) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

func VerifyPassword(password string, hash []byte) bool {
	if len(password) == 0 || len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
