package domain

import (
	"unicode"
	"unicode/utf8"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

const (
	minPasswordLength = 8
	// bcrypt refuses inputs longer than this many bytes.
	maxPasswordBytes = 72
)

// PasswordHasher hashes and verifies raw passwords.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Matches(raw, hash string) bool
}

// Password holds only the hash of a validated raw password.
type Password struct {
	hash string
}

// ValidatePassword enforces length and character-class rules on a raw password.
func ValidatePassword(raw string) error {
	if utf8.RuneCountInString(raw) < minPasswordLength {
		return apperrors.NewValidationError("password must be at least 8 characters long", map[string]any{"field": "password"})
	}
	if len(raw) > maxPasswordBytes {
		return apperrors.NewValidationError("password must be at most 72 bytes long", map[string]any{"field": "password", "max_bytes": maxPasswordBytes})
	}
	var hasLetter, hasDigit bool
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return apperrors.NewValidationError("password must contain at least one letter", map[string]any{"field": "password"})
	}
	if !hasDigit {
		return apperrors.NewValidationError("password must contain at least one digit", map[string]any{"field": "password"})
	}
	return nil
}

// NewPassword validates raw and stores its hash.
func NewPassword(raw string, hasher PasswordHasher) (Password, error) {
	if err := ValidatePassword(raw); err != nil {
		return Password{}, err
	}
	hash, err := hasher.Hash(raw)
	if err != nil {
		return Password{}, apperrors.NewInternalError(err)
	}
	return Password{hash: hash}, nil
}

// PasswordFromHash rebuilds a Password from storage.
func PasswordFromHash(hash string) Password {
	return Password{hash: hash}
}

func (p Password) Hash() string {
	return p.hash
}

// Matches compares raw against the stored hash.
func (p Password) Matches(raw string, hasher PasswordHasher) bool {
	if p.hash == "" {
		return false
	}
	return hasher.Matches(raw, p.hash)
}
