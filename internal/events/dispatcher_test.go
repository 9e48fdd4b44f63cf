package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityfeedback/feedback-service/internal/domain"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var registered, all []Event
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		registered = append(registered, e)
		return nil
	})
	d.SubscribeAll(func(_ context.Context, e Event) error {
		all = append(all, e)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), FromDomain("", domain.UserRegistered{UserID: "u-1", Email: "a@b.de"})))
	require.NoError(t, d.Publish(context.Background(), FromDomain("s-1", domain.FeedbackPublished{FeedbackID: "f-1"})))

	require.Len(t, registered, 1)
	assert.Equal(t, "u-1", registered[0].AggregateID)
	assert.Len(t, all, 2)
	assert.Equal(t, "s-1", all[1].ActorID)
	assert.NotEmpty(t, all[1].ID)
	assert.False(t, all[1].Timestamp.IsZero())
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	calls := 0
	d.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		calls++
		return errors.New("smtp down")
	})
	d.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), FromDomain("s-1", domain.CommentAdded{CommentID: "c-1", FeedbackID: "f-1"}))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
