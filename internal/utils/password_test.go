package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{"valid", "Passw0rd!", ""},
		{"valid with brace symbol", "Aa1{aaaa", ""},
		{"too short", "Aa1!", "Password must be at least 8 characters long"},
		{"no uppercase", "passw0rd!", "Password must contain at least one uppercase letter"},
		{"no lowercase", "PASSW0RD!", "Password must contain at least one lowercase letter"},
		{"no digit", "Password!", "Password must contain at least one number"},
		{"no symbol", "Passw0rd", "Password must contain at least one special character"},
		{"symbol outside the fixed set", "Passw0rd~", "Password must contain at least one special character"},
		{"empty", "", "Password must be at least 8 characters long"},
		{"seven multibyte characters", "Aa1!ééé", "Password must be at least 8 characters long"},
		{"eight characters with multibyte padding", "Aa1!éééé", ""},
		{"only a non-ASCII uppercase letter", "Éa1!aaaa", "Password must contain at least one uppercase letter"},
		{"only a non-ASCII lowercase letter", "Aß1!AAAA", "Password must contain at least one lowercase letter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

// Length is checked before the character classes, so a short password missing
// several classes still reports the length rule.
func TestValidatePasswordRuleOrder(t *testing.T) {
	err := ValidatePassword("a")
	require.Error(t, err)
	assert.Equal(t, "Password must be at least 8 characters long", err.Error())

	// Long enough and lowercase-only: uppercase is the first missing class.
	err = ValidatePassword("aaaaaaaa")
	require.Error(t, err)
	assert.Equal(t, "Password must contain at least one uppercase letter", err.Error())
}
