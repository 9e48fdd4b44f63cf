package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/events"
	"github.com/cityfeedback/feedback-service/internal/observability"
	"github.com/cityfeedback/feedback-service/internal/repository/memory"
)

type brokenDispatcher struct{}

func (brokenDispatcher) Publish(context.Context, events.Event) error {
	return errors.New("bus unavailable")
}
func (brokenDispatcher) Subscribe(events.EventType, events.EventHandler) {}
func (brokenDispatcher) SubscribeAll(events.EventHandler)                {}

func TestDispatchFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	users := NewUserService(UserDependencies{
		Store:        memory.NewStore(),
		Hasher:       plainHasher{},
		Dispatcher:   brokenDispatcher{},
		Instrumenter: observability.NewInstrumenter(nil, nil),
		Logger:       zap.New(core),
	})

	u, err := users.CreateUser(context.Background(), "anna@city.de", "Abcdef12", domain.RoleCitizen)
	require.NoError(t, err)

	entries := logs.FilterMessage("event dispatch failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, string(events.EventUserRegistered), fields["event_type"])
	assert.Equal(t, u.ID(), fields["aggregate_id"])
	assert.Equal(t, "bus unavailable", fields["error"])
}
