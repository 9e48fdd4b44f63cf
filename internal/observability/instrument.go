package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

const (
	tracerName    = "github.com/cityfeedback/feedback-service/internal/service"
	slowThreshold = 100 * time.Millisecond
)

// Instrumenter wraps service operations with a span, timing, metrics and a log line.
type Instrumenter struct {
	logger  *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewInstrumenter builds an Instrumenter. A nil logger or metrics is tolerated.
func NewInstrumenter(logger *zap.Logger, metrics *Metrics) *Instrumenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumenter{logger: logger, metrics: metrics, tracer: otel.Tracer(tracerName)}
}

// Run executes fn as the named operation.
func (i *Instrumenter) Run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	_, err := Observe(ctx, i, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Observe executes fn as the named operation and returns its result.
func Observe[T any](ctx context.Context, i *Instrumenter, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	if i == nil {
		return fn(ctx)
	}

	ctx, span := i.tracer.Start(ctx, operation)
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	duration := time.Since(start)

	i.metrics.RecordOperation(operation, duration, err != nil)

	fields := []zap.Field{zap.String("operation", operation), zap.Duration("duration", duration)}
	switch {
	case err != nil:
		de := apperrors.ToDomainError(err)
		span.SetAttributes(attribute.String("error.code", de.Code))
		span.SetStatus(codes.Error, de.Message)
		fields = append(fields, zap.String("code", de.Code), zap.Error(err))
		if de.HTTPStatus >= 500 {
			i.logger.Error("operation failed", fields...)
		} else {
			i.logger.Info("operation rejected", fields...)
		}
	case duration > slowThreshold:
		i.logger.Warn("slow operation", fields...)
	default:
		i.logger.Debug("operation completed", fields...)
	}
	return result, err
}
