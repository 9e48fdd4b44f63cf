package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

type prefixHasher struct{}

func (prefixHasher) Hash(raw string) (string, error) { return "hashed:" + raw, nil }
func (prefixHasher) Matches(raw, hash string) bool   { return hash == "hashed:"+raw }

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("Abcdef12"))

	for _, raw := range []string{"short1", "12345678", "ABCDEFGH", ""} {
		err := ValidatePassword(raw)
		require.Error(t, err, raw)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), raw)
	}
}

func TestNewPasswordStoresOnlyHash(t *testing.T) {
	p, err := NewPassword("Abcdef12", prefixHasher{})
	require.NoError(t, err)
	assert.Equal(t, "hashed:Abcdef12", p.Hash())
	assert.True(t, p.Matches("Abcdef12", prefixHasher{}))
	assert.False(t, p.Matches("Abcdef13", prefixHasher{}))
}

func TestNewPasswordRejectsBeforeHashing(t *testing.T) {
	_, err := NewPassword("short1", prefixHasher{})
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "hashed:"))
}

func TestEmptyPasswordNeverMatches(t *testing.T) {
	assert.False(t, Password{}.Matches("", prefixHasher{}))
}

func TestValidatePasswordCapsByteLength(t *testing.T) {
	require.NoError(t, ValidatePassword(strings.Repeat("a", 71)+"1"))

	// 40 two-byte runes plus a digit: 41 characters but 81 bytes.
	err := ValidatePassword(strings.Repeat("ä", 40) + "1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
