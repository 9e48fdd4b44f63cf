package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

const maxEmailLength = 254

var emailValidator = validator.New()

// Email is a normalized, validated e-mail address.
type Email struct {
	value string
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NewEmail normalizes raw and validates its shape.
func NewEmail(raw string) (Email, error) {
	normalized := NormalizeEmail(raw)
	if normalized == "" {
		return Email{}, apperrors.NewValidationError("email must not be blank", map[string]any{"field": "email"})
	}
	if len(normalized) > maxEmailLength || emailValidator.Var(normalized, "required,email") != nil {
		return Email{}, apperrors.NewValidationError("email has an invalid format", map[string]any{"field": "email"})
	}
	return Email{value: normalized}, nil
}

func (e Email) String() string {
	return e.value
}

// IsZero reports whether e was never initialized.
func (e Email) IsZero() bool {
	return e.value == ""
}
