package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

const (
	MaxTitleLength   = 200
	MaxContentLength = 5000
)

// Feedback is the aggregate for citizen reports. Every state change goes
// through its methods, which return the events the change produced.
type Feedback struct {
	id           string
	title        string
	category     Category
	feedbackDate time.Time
	content      string
	status       Status
	published    bool
	creatorID    string
}

// FeedbackSnapshot is the flat representation used by persistence adapters.
type FeedbackSnapshot struct {
	ID           string
	Title        string
	Category     Category
	FeedbackDate time.Time
	Content      string
	Status       Status
	Published    bool
	CreatorID    string
}

// NewFeedback validates the input and returns a PENDING, unpublished item.
func NewFeedback(title string, category Category, content, creatorID string) (*Feedback, error) {
	if err := validateText("title", title, MaxTitleLength); err != nil {
		return nil, err
	}
	if err := validateText("content", content, MaxContentLength); err != nil {
		return nil, err
	}
	if category == "" {
		return nil, apperrors.NewValidationError("category is required", map[string]any{"field": "category"})
	}
	if !category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": string(category)})
	}
	if strings.TrimSpace(creatorID) == "" {
		return nil, apperrors.NewValidationError("creator id is required", map[string]any{"field": "creator_id"})
	}
	return &Feedback{
		title:        title,
		category:     category,
		feedbackDate: time.Now().UTC(),
		content:      content,
		status:       StatusPending,
		creatorID:    creatorID,
	}, nil
}

// RestoreFeedback rebuilds a Feedback from storage and rejects snapshots that break its invariants.
func RestoreFeedback(s FeedbackSnapshot) (*Feedback, error) {
	if !s.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(s.Status)})
	}
	if !s.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": string(s.Category)})
	}
	if s.Published && !s.Status.allowsPublication() {
		return nil, apperrors.NewValidationError("feedback cannot be published in its status", map[string]any{"status": string(s.Status)})
	}
	return &Feedback{
		id:           s.ID,
		title:        s.Title,
		category:     s.Category,
		feedbackDate: s.FeedbackDate,
		content:      s.Content,
		status:       s.Status,
		published:    s.Published,
		creatorID:    s.CreatorID,
	}, nil
}

func (f *Feedback) ID() string              { return f.id }
func (f *Feedback) Title() string           { return f.title }
func (f *Feedback) Category() Category      { return f.category }
func (f *Feedback) FeedbackDate() time.Time { return f.feedbackDate }
func (f *Feedback) Content() string         { return f.content }
func (f *Feedback) Status() Status          { return f.status }
func (f *Feedback) IsPublished() bool       { return f.published }
func (f *Feedback) CreatorID() string       { return f.creatorID }

// AssignID records the identifier handed out by storage. It may only happen once.
func (f *Feedback) AssignID(id string) error {
	if f.id != "" {
		return apperrors.NewValidationError("feedback already has an id", map[string]any{"id": f.id})
	}
	if id == "" {
		return apperrors.NewValidationError("feedback id must not be empty", nil)
	}
	f.id = id
	return nil
}

// Submitted returns the creation event. It needs the persisted id.
func (f *Feedback) Submitted() (FeedbackSubmitted, error) {
	if f.id == "" {
		return FeedbackSubmitted{}, apperrors.NewValidationError("feedback must be persisted before submission is announced", nil)
	}
	return FeedbackSubmitted{FeedbackID: f.id, CreatorID: f.creatorID, Category: f.category, Title: f.title}, nil
}

// Approve moves a PENDING item to OPEN.
func (f *Feedback) Approve() ([]Event, error) {
	if f.status != StatusPending {
		return nil, f.invalidState("only pending feedback can be approved")
	}
	f.status = StatusOpen
	return []Event{FeedbackStatusChanged{FeedbackID: f.id, From: StatusPending, To: StatusOpen}}, nil
}

// UpdateStatus moves the item to next. CLOSED is terminal and entering
// PENDING or CLOSED takes the item off the public list.
func (f *Feedback) UpdateStatus(next Status) ([]Event, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(next)})
	}
	if f.status.IsTerminal() && next != StatusClosed {
		return nil, apperrors.NewValidationError("closed feedback cannot change status", map[string]any{
			"from": string(f.status),
			"to":   string(next),
		})
	}
	from := f.status
	unpublished := f.published && !next.allowsPublication()
	f.status = next
	if !next.allowsPublication() {
		f.published = false
	}
	if from == next && !unpublished {
		return nil, nil
	}
	return []Event{FeedbackStatusChanged{FeedbackID: f.id, From: from, To: next, Unpublished: unpublished}}, nil
}

// Close is UpdateStatus(StatusClosed).
func (f *Feedback) Close() ([]Event, error) {
	return f.UpdateStatus(StatusClosed)
}

// Publish makes an approved, non-closed item public.
func (f *Feedback) Publish() ([]Event, error) {
	switch {
	case f.published:
		return nil, f.invalidState("feedback is already published")
	case f.status == StatusClosed:
		return nil, f.invalidState("closed feedback cannot be published")
	case f.status == StatusPending:
		return nil, f.invalidState("feedback must be approved before publishing")
	}
	f.published = true
	return []Event{FeedbackPublished{FeedbackID: f.id}}, nil
}

// Unpublish is idempotent; an event is only produced when visibility changed.
func (f *Feedback) Unpublish() []Event {
	if !f.published {
		return nil
	}
	f.published = false
	return []Event{FeedbackUnpublished{FeedbackID: f.id}}
}

func (f *Feedback) Snapshot() FeedbackSnapshot {
	return FeedbackSnapshot{
		ID:           f.id,
		Title:        f.title,
		Category:     f.category,
		FeedbackDate: f.feedbackDate,
		Content:      f.content,
		Status:       f.status,
		Published:    f.published,
		CreatorID:    f.creatorID,
	}
}

func (f *Feedback) invalidState(message string) error {
	return apperrors.NewValidationError(message, map[string]any{
		"status":    string(f.status),
		"published": f.published,
	})
}

func validateText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(field+" must not be blank", map[string]any{"field": field})
	}
	if utf8.RuneCountInString(value) > max {
		return apperrors.NewValidationError(field+" is too long", map[string]any{"field": field, "max": max})
	}
	return nil
}
