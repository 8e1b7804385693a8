package util

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var emailValidator = validator.New()

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail applies the shape check to an already normalized address.
func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailValidator.Var(email, "required,email,max=254") == nil
}

// MaskEmail keeps the first two characters of the local part and the whole
// domain, replacing the rest of the local part with at least three asterisks.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at:]

	keep := local
	hidden := 0
	if utf8.RuneCountInString(local) > 2 {
		runes := []rune(local)
		keep = string(runes[:2])
		hidden = len(runes) - 2
	}
	if hidden < 3 {
		hidden = 3
	}
	return keep + strings.Repeat("*", hidden) + domain
}
