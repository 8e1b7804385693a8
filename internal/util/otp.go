package util

import (
	"crypto/rand"
	"math/big"
)

const DefaultOTPDigits = 6

// GenerateNumericOTP returns a uniformly random code of exactly digits
// digits with no leading zero, so a 6 digit code is drawn from 900000 values.
func GenerateNumericOTP(digits int) (string, error) {
	if digits <= 0 {
		digits = DefaultOTPDigits
	}
	floor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	span := new(big.Int).Mul(floor, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return n.Add(n, floor).String(), nil
}

// IsNumericCode reports whether code is exactly digits ASCII digits.
func IsNumericCode(code string, digits int) bool {
	if len(code) != digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
