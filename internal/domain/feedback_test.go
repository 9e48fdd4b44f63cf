package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

func newPothole(t *testing.T) *Feedback {
	t.Helper()
	f, err := NewFeedback("Pothole", CategoryTraffic, "big hole", "u-1")
	require.NoError(t, err)
	require.NoError(t, f.AssignID("f-1"))
	return f
}

func feedbackIn(t *testing.T, status Status, published bool) *Feedback {
	t.Helper()
	f, err := RestoreFeedback(FeedbackSnapshot{
		ID:           "f-1",
		Title:        "Broken lamp",
		Category:     CategoryLighting,
		FeedbackDate: time.Now().UTC(),
		Content:      "dark street",
		Status:       status,
		Published:    published,
		CreatorID:    "u-1",
	})
	require.NoError(t, err)
	return f
}

func requireValidation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), err.Error())
}

func TestFeedbackLifecycleScenario(t *testing.T) {
	f := newPothole(t)
	assert.Equal(t, StatusPending, f.Status())
	assert.False(t, f.IsPublished())

	_, err := f.Approve()
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, f.Status())

	_, err = f.Publish()
	require.NoError(t, err)
	assert.True(t, f.IsPublished())

	events, err := f.UpdateStatus(StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, f.Status())
	assert.False(t, f.IsPublished())
	require.Len(t, events, 1)
	assert.Equal(t, FeedbackStatusChanged{FeedbackID: "f-1", From: StatusOpen, To: StatusClosed, Unpublished: true}, events[0])

	_, err = f.Publish()
	requireValidation(t, err)
}

func TestNewFeedbackValidation(t *testing.T) {
	cases := map[string]struct {
		title    string
		category Category
		content  string
		creator  string
	}{
		"blank title":      {"  ", CategoryTraffic, "x", "u"},
		"long title":       {strings.Repeat("a", MaxTitleLength+1), CategoryTraffic, "x", "u"},
		"blank content":    {"t", CategoryTraffic, "", "u"},
		"long content":     {"t", CategoryTraffic, strings.Repeat("a", MaxContentLength+1), "u"},
		"missing category": {"t", "", "x", "u"},
		"unknown category": {"t", "WEATHER", "x", "u"},
		"missing creator":  {"t", CategoryTraffic, "x", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewFeedback(tc.title, tc.category, tc.content, tc.creator)
			requireValidation(t, err)
		})
	}

	f, err := NewFeedback(strings.Repeat("ä", MaxTitleLength), CategoryEnvironment, strings.Repeat("b", MaxContentLength), "u")
	require.NoError(t, err, "bounds are inclusive and counted in characters")
	assert.False(t, f.FeedbackDate().IsZero())
}

func TestApproveOnlyFromPending(t *testing.T) {
	for _, status := range Statuses {
		f := feedbackIn(t, status, false)
		_, err := f.Approve()
		if status == StatusPending {
			require.NoError(t, err)
			assert.Equal(t, StatusOpen, f.Status())
			continue
		}
		requireValidation(t, err)
		assert.Equal(t, status, f.Status())
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for _, next := range Statuses {
		f := feedbackIn(t, StatusClosed, false)
		_, err := f.UpdateStatus(next)
		if next == StatusClosed {
			require.NoError(t, err)
		} else {
			requireValidation(t, err)
		}
		assert.Equal(t, StatusClosed, f.Status())
		assert.False(t, f.IsPublished())
	}
}

func TestPublishPreconditions(t *testing.T) {
	for _, status := range Statuses {
		for _, published := range []bool{false, true} {
			if published && (status == StatusPending || status == StatusClosed) {
				continue
			}
			f := feedbackIn(t, status, published)
			events, err := f.Publish()
			allowed := status != StatusPending && status != StatusClosed && !published
			if allowed {
				require.NoError(t, err, "%s/%v", status, published)
				assert.True(t, f.IsPublished())
				assert.Equal(t, []Event{FeedbackPublished{FeedbackID: "f-1"}}, events)
			} else {
				requireValidation(t, err)
			}
		}
	}
}

func TestUnpublishIsIdempotent(t *testing.T) {
	f := feedbackIn(t, StatusInProgress, true)
	assert.Len(t, f.Unpublish(), 1)
	assert.False(t, f.IsPublished())
	assert.Empty(t, f.Unpublish())
	assert.False(t, f.IsPublished())
}

func TestMovingBackToPendingUnpublishes(t *testing.T) {
	f := feedbackIn(t, StatusDone, true)
	_, err := f.UpdateStatus(StatusPending)
	require.NoError(t, err)
	assert.False(t, f.IsPublished())
}

func TestCloseIsUpdateStatusClosed(t *testing.T) {
	f := feedbackIn(t, StatusInProgress, true)
	_, err := f.Close()
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, f.Status())
	assert.False(t, f.IsPublished())
}

func TestUpdateStatusSameValueEmitsNothing(t *testing.T) {
	f := feedbackIn(t, StatusOpen, false)
	events, err := f.UpdateStatus(StatusOpen)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRestoreFeedbackRejectsBrokenInvariant(t *testing.T) {
	_, err := RestoreFeedback(FeedbackSnapshot{ID: "f", Category: CategoryTraffic, Status: StatusClosed, Published: true})
	requireValidation(t, err)
}

func TestSubmittedRequiresID(t *testing.T) {
	f, err := NewFeedback("Pothole", CategoryTraffic, "big hole", "u-1")
	require.NoError(t, err)
	_, err = f.Submitted()
	require.Error(t, err)

	require.NoError(t, f.AssignID("f-7"))
	event, err := f.Submitted()
	require.NoError(t, err)
	assert.Equal(t, "f-7", event.AggregateID())
	assert.Equal(t, EventNameFeedbackSubmitted, event.EventName())
}
