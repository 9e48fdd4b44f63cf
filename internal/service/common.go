package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/events"
	"github.com/cityfeedback/feedback-service/internal/policy"
	"github.com/cityfeedback/feedback-service/internal/repository"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// eventPublisher forwards domain events once their unit of work committed.
// The state change already happened, so a dispatch failure is logged and
// never turned into a request error.
type eventPublisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func newEventPublisher(dispatcher events.Dispatcher, logger *zap.Logger) eventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return eventPublisher{dispatcher: dispatcher, logger: logger}
}

func (p eventPublisher) publish(ctx context.Context, actorID string, emitted ...domain.Event) {
	if p.dispatcher == nil {
		return
	}
	for _, e := range emitted {
		event := events.FromDomain(actorID, e)
		if err := p.dispatcher.Publish(ctx, event); err != nil {
			p.logger.Warn("event dispatch failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.String("aggregate_id", event.AggregateID),
				zap.Error(err))
		}
	}
}

// resolveActor loads the acting user and checks its role. A missing actor is
// NOT_FOUND, never FORBIDDEN.
func resolveActor(ctx context.Context, users repository.UserRepository, actorID string, action policy.Action) (*domain.User, error) {
	actor, err := users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperrors.NewNotFound("acting user", map[string]any{"id": actorID})
	}
	if err := policy.AuthorizeUser(actor, action); err != nil {
		return nil, err
	}
	return actor, nil
}

func loadUser(ctx context.Context, users repository.UserRepository, id string) (*domain.User, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return user, nil
}

func loadFeedback(ctx context.Context, feedback repository.FeedbackRepository, id string) (*domain.Feedback, error) {
	item, err := feedback.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NewNotFound("feedback", map[string]any{"id": id})
	}
	return item, nil
}
