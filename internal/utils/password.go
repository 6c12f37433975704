package utils

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// The accepted symbol set is fixed; anything outside it does not count as a
// special character.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }

// ValidatePassword applies the acceptance policy rule by rule, in a fixed
// order, and reports the first rule violated. The returned error message is
// shown to the user as-is.
//
// Length counts characters, not bytes, so multibyte passwords are measured
// the way the user perceives them. The uppercase and lowercase rules accept
// ASCII letters only; digits may be any Unicode decimal digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return errors.New("Password must be at least 8 characters long")
	}
	if !strings.ContainsFunc(password, isASCIIUpper) {
		return errors.New("Password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(password, isASCIILower) {
		return errors.New("Password must contain at least one lowercase letter")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return errors.New("Password must contain at least one number")
	}
	if !strings.ContainsAny(password, passwordSymbols) {
		return errors.New("Password must contain at least one special character")
	}
	return nil
}
