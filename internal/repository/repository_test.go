package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityfeedback/feedback-service/internal/domain"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

func TestMapUserWriteErrorUniqueViolation(t *testing.T) {
	err := mapUserWriteError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}, "anna@city.de")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	other := errors.New("connection reset")
	err = mapUserWriteError(other, "anna@city.de")
	assert.ErrorIs(t, err, other)
	assert.False(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestFeedbackRowMapping(t *testing.T) {
	date := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	row := feedbackRow{
		ID:           "0b9d3c52-7f5e-4a57-9d1c-8a8f2f0b8c11",
		Title:        "Graffiti",
		Category:     "VANDALISM",
		FeedbackDate: date,
		Content:      "on the town hall",
		Status:       "OPEN",
		Published:    true,
		CreatorID:    "5f0e8c4e-2a7b-4a0c-9d7b-0f7b3d0b9a10",
	}
	f, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryVandalism, f.Category())
	assert.Equal(t, domain.StatusOpen, f.Status())
	assert.True(t, f.IsPublished())
	assert.Equal(t, row, feedbackRowFromDomain(f))
}

func TestFeedbackRowMappingRejectsUnknownStatus(t *testing.T) {
	_, err := feedbackRow{Category: "TRAFFIC", Status: "ARCHIVED"}.toDomain()
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestUserRowMapping(t *testing.T) {
	row := userRow{
		ID:           "5f0e8c4e-2a7b-4a0c-9d7b-0f7b3d0b9a10",
		Email:        "staff@city.de",
		PasswordHash: "$2a$10$abc",
		Role:         "STAFF",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	u, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, u.Role())
	assert.Equal(t, row, userRowFromDomain(u))
}

func TestTransactionsRunSerializable(t *testing.T) {
	assert.Equal(t, pgx.Serializable, txOptions.IsoLevel)
}

func TestMapTxErrorSerializationFailure(t *testing.T) {
	err := mapTxError(&pgconn.PgError{Code: serializationFailure})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	other := errors.New("connection reset")
	assert.Equal(t, other, mapTxError(other))
	assert.NoError(t, mapTxError(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: foreignKeyViolation})))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: uniqueViolation}))
	assert.False(t, isForeignKeyViolation(errors.New("boom")))
}
