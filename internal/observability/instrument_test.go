package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

func TestObserveRecordsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	metrics := NewMetrics()
	ins := NewInstrumenter(zap.New(core), metrics)

	value, err := Observe(context.Background(), ins, "UserService.GetUserByID", func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, value)

	err = ins.Run(context.Background(), "UserService.GetUserByID", func(context.Context) error {
		return apperrors.NewNotFound("user", nil)
	})
	require.Error(t, err)

	boom := errors.New("db down")
	err = ins.Run(context.Background(), "FeedbackService.GetAllFeedback", func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	snap := metrics.Snapshot()
	assert.Equal(t, []string{"FeedbackService.GetAllFeedback", "UserService.GetUserByID"}, snap.OperationNames())
	assert.Equal(t, int64(2), snap.Operations["UserService.GetUserByID"].Calls)
	assert.Equal(t, int64(1), snap.Operations["UserService.GetUserByID"].Errors)

	assert.Equal(t, 1, logs.FilterMessage("operation rejected").Len())
	assert.Equal(t, 1, logs.FilterMessage("operation failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("operation completed").Len())
}

func TestObserveWithNilInstrumenter(t *testing.T) {
	value, err := Observe(context.Background(), nil, "op", func(context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordOperation("x", 0, false)
	m.RecordRequest("/", "GET", 200, 0)
	assert.Empty(t, m.Snapshot().Operations)
}
