package domain

import (
	"strings"
	"time"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

const MaxCommentLength = 2000

// Comment is an immutable staff note attached to a feedback item by id.
type Comment struct {
	id         string
	feedbackID string
	authorID   string
	content    string
	createdAt  time.Time
}

type CommentSnapshot struct {
	ID         string
	FeedbackID string
	AuthorID   string
	Content    string
	CreatedAt  time.Time
}

func NewComment(feedbackID, authorID, content string) (*Comment, error) {
	if strings.TrimSpace(feedbackID) == "" {
		return nil, apperrors.NewValidationError("feedback id is required", map[string]any{"field": "feedback_id"})
	}
	if strings.TrimSpace(authorID) == "" {
		return nil, apperrors.NewValidationError("author id is required", map[string]any{"field": "author_id"})
	}
	if err := validateText("content", content, MaxCommentLength); err != nil {
		return nil, err
	}
	return &Comment{
		feedbackID: feedbackID,
		authorID:   authorID,
		content:    content,
		createdAt:  time.Now().UTC(),
	}, nil
}

func RestoreComment(s CommentSnapshot) *Comment {
	return &Comment{
		id:         s.ID,
		feedbackID: s.FeedbackID,
		authorID:   s.AuthorID,
		content:    s.Content,
		createdAt:  s.CreatedAt,
	}
}

func (c *Comment) ID() string           { return c.id }
func (c *Comment) FeedbackID() string   { return c.feedbackID }
func (c *Comment) AuthorID() string     { return c.authorID }
func (c *Comment) Content() string      { return c.content }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }

func (c *Comment) AssignID(id string) error {
	if c.id != "" {
		return apperrors.NewValidationError("comment already has an id", map[string]any{"id": c.id})
	}
	if id == "" {
		return apperrors.NewValidationError("comment id must not be empty", nil)
	}
	c.id = id
	return nil
}

// Added returns the creation event. It needs the persisted id.
func (c *Comment) Added() (CommentAdded, error) {
	if c.id == "" {
		return CommentAdded{}, apperrors.NewValidationError("comment must be persisted before it is announced", nil)
	}
	return CommentAdded{CommentID: c.id, FeedbackID: c.feedbackID, AuthorID: c.authorID}, nil
}

func (c *Comment) Snapshot() CommentSnapshot {
	return CommentSnapshot{
		ID:         c.id,
		FeedbackID: c.feedbackID,
		AuthorID:   c.authorID,
		Content:    c.content,
		CreatedAt:  c.createdAt,
	}
}
