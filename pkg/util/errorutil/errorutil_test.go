package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("loading user: %w", NewNotFound("user", map[string]any{"id": "42"}))
		de := ToDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, CodeNotFound, de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
		assert.Equal(t, "user not found", de.Message)
		assert.Equal(t, "42", de.Details["id"])
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		cause := errors.New("boom")
		de := ToDomainError(cause)
		require.NotNil(t, de)
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
		assert.ErrorIs(t, de, cause)
	})
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewConflict("email already registered", nil))
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
	assert.False(t, HasCode(nil, CodeConflict))
}

func TestInvalidCredentialsIsUndifferentiated(t *testing.T) {
	de := ToDomainError(NewInvalidCredentials())
	assert.Equal(t, CodeInvalidCredentials, de.Code)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
	assert.NotContains(t, de.Message, "not found")
}
