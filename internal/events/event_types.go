package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/cityfeedback/feedback-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered        EventType = domain.EventNameUserRegistered
	EventUserRoleChanged       EventType = domain.EventNameUserRoleChanged
	EventFeedbackSubmitted     EventType = domain.EventNameFeedbackSubmitted
	EventFeedbackStatusChanged EventType = domain.EventNameFeedbackStatusChanged
	EventFeedbackPublished     EventType = domain.EventNameFeedbackPublished
	EventFeedbackUnpublished   EventType = domain.EventNameFeedbackUnpublished
	EventCommentAdded          EventType = domain.EventNameCommentAdded
)

// Event is the envelope handed to subscribers.
type Event struct {
	ID          string       `json:"id"`
	Type        EventType    `json:"type"`
	AggregateID string       `json:"aggregate_id"`
	ActorID     string       `json:"actor_id,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	Payload     domain.Event `json:"payload"`
}

// FromDomain wraps a domain event in an envelope.
func FromDomain(actorID string, e domain.Event) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        EventType(e.EventName()),
		AggregateID: e.AggregateID(),
		ActorID:     actorID,
		Timestamp:   time.Now().UTC(),
		Payload:     e,
	}
}
