package util

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Abcdefg1", ""},
		{"too short", "Ab1", errPasswordLength},
		{"no uppercase or digit", "abcdefgh", errPasswordClasses},
		{"no lowercase", "ABCDEFG1", errPasswordClasses},
		{"no digit", "Abcdefgh", errPasswordClasses},
		{"72 bytes", "Aa1" + strings.Repeat("x", 69), ""},
		{"73 bytes", "Aa1" + strings.Repeat("x", 70), errPasswordTooLong},
		{"multibyte over limit", "Aa1" + strings.Repeat("é", 35), errPasswordTooLong},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tc.name, err)
			}
			continue
		}
		if err == nil || err.Error() != tc.wantErr {
			t.Fatalf("%s: expected %q, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("ResetPass12", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !VerifyPassword("ResetPass12", hash) {
		t.Fatalf("expected password verification to succeed")
	}
	if VerifyPassword("wrong-pass", hash) {
		t.Fatalf("expected password verification to fail for wrong password")
	}

	again, err := HashPassword("ResetPass12", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if string(again) == string(hash) {
		t.Fatalf("expected salted hashes to differ")
	}
}

func TestHashPasswordEmptyInput(t *testing.T) {
	if _, err := HashPassword("", bcrypt.MinCost); err == nil {
		t.Fatalf("expected error when password empty")
	}
	if VerifyPassword("secret", nil) {
		t.Fatalf("expected verification against empty hash to fail")
	}
}
