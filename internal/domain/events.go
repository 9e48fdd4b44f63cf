package domain

// Event is a fact produced by an aggregate method. The orchestration layer
// forwards returned events to the publishing port once the change is persisted.
type Event interface {
	EventName() string
	AggregateID() string
}

const (
	EventNameUserRegistered        = "user_registered"
	EventNameUserRoleChanged       = "user_role_changed"
	EventNameFeedbackSubmitted     = "feedback_submitted"
	EventNameFeedbackStatusChanged = "feedback_status_changed"
	EventNameFeedbackPublished     = "feedback_published"
	EventNameFeedbackUnpublished   = "feedback_unpublished"
	EventNameCommentAdded          = "comment_added"
)

type UserRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (e UserRegistered) EventName() string   { return EventNameUserRegistered }
func (e UserRegistered) AggregateID() string { return e.UserID }

type UserRoleChanged struct {
	UserID string   `json:"user_id"`
	From   UserRole `json:"from"`
	To     UserRole `json:"to"`
}

func (e UserRoleChanged) EventName() string   { return EventNameUserRoleChanged }
func (e UserRoleChanged) AggregateID() string { return e.UserID }

type FeedbackSubmitted struct {
	FeedbackID string   `json:"feedback_id"`
	CreatorID  string   `json:"creator_id"`
	Category   Category `json:"category"`
	Title      string   `json:"title"`
}

func (e FeedbackSubmitted) EventName() string   { return EventNameFeedbackSubmitted }
func (e FeedbackSubmitted) AggregateID() string { return e.FeedbackID }

// FeedbackStatusChanged reports a status move. Unpublished is set when the
// move took the item off the public list.
type FeedbackStatusChanged struct {
	FeedbackID  string `json:"feedback_id"`
	From        Status `json:"from"`
	To          Status `json:"to"`
	Unpublished bool   `json:"unpublished"`
}

func (e FeedbackStatusChanged) EventName() string   { return EventNameFeedbackStatusChanged }
func (e FeedbackStatusChanged) AggregateID() string { return e.FeedbackID }

type FeedbackPublished struct {
	FeedbackID string `json:"feedback_id"`
}

func (e FeedbackPublished) EventName() string   { return EventNameFeedbackPublished }
func (e FeedbackPublished) AggregateID() string { return e.FeedbackID }

type FeedbackUnpublished struct {
	FeedbackID string `json:"feedback_id"`
}

func (e FeedbackUnpublished) EventName() string   { return EventNameFeedbackUnpublished }
func (e FeedbackUnpublished) AggregateID() string { return e.FeedbackID }

type CommentAdded struct {
	CommentID  string `json:"comment_id"`
	FeedbackID string `json:"feedback_id"`
	AuthorID   string `json:"author_id"`
}

func (e CommentAdded) EventName() string   { return EventNameCommentAdded }
func (e CommentAdded) AggregateID() string { return e.FeedbackID }
