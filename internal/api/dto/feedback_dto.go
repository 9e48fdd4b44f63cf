package dto

import (
	"time"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/service"
)

// CreateFeedbackRequest payload. The creator is always the authenticated caller.
type CreateFeedbackRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Category string `json:"category" validate:"required,oneof=TRAFFIC ENVIRONMENT LIGHTING VANDALISM ADMINISTRATION"`
	Content  string `json:"content" validate:"required,max=5000"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING OPEN INPROGRESS DONE CLOSED"`
}

// CreateCommentRequest payload. The author is always the authenticated caller.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// FeedbackResponse represents one feedback item.
type FeedbackResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Category     domain.Category `json:"category"`
	FeedbackDate time.Time       `json:"feedback_date"`
	Content      string          `json:"content"`
	Status       domain.Status   `json:"status"`
	Published    bool            `json:"published"`
	CreatorID    string          `json:"creator_id"`
}

// CommentResponse represents one comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	FeedbackID string    `json:"feedback_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatisticsResponse mirrors service.FeedbackStatistics; dates are null for an empty set.
type StatisticsResponse struct {
	TotalCount     int        `json:"total_count"`
	PublishedCount int        `json:"published_count"`
	ClosedCount    int        `json:"closed_count"`
	OpenCount      int        `json:"open_count"`
	OldestDate     *time.Time `json:"oldest_date"`
	NewestDate     *time.Time `json:"newest_date"`
}

// SummaryResponse is the public view of a published, active item.
type SummaryResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Category     domain.Category `json:"category"`
	Status       domain.Status   `json:"status"`
	FeedbackDate time.Time       `json:"feedback_date"`
}

func NewFeedbackResponse(f *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:           f.ID(),
		Title:        f.Title(),
		Category:     f.Category(),
		FeedbackDate: f.FeedbackDate(),
		Content:      f.Content(),
		Status:       f.Status(),
		Published:    f.IsPublished(),
		CreatorID:    f.CreatorID(),
	}
}

func NewFeedbackList(items []*domain.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(items))
	for _, f := range items {
		out = append(out, NewFeedbackResponse(f))
	}
	return out
}

func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID(),
		FeedbackID: c.FeedbackID(),
		AuthorID:   c.AuthorID(),
		Content:    c.Content(),
		CreatedAt:  c.CreatedAt(),
	}
}

func NewCommentList(comments []*domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewCommentResponse(c))
	}
	return out
}

func NewStatisticsResponse(s service.FeedbackStatistics) StatisticsResponse {
	return StatisticsResponse{
		TotalCount:     s.TotalCount,
		PublishedCount: s.PublishedCount,
		ClosedCount:    s.ClosedCount,
		OpenCount:      s.OpenCount,
		OldestDate:     s.OldestDate,
		NewestDate:     s.NewestDate,
	}
}

func NewSummaryList(summaries []service.FeedbackSummary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, SummaryResponse{
			ID:           s.ID,
			Title:        s.Title,
			Category:     s.Category,
			Status:       s.Status,
			FeedbackDate: s.FeedbackDate,
		})
	}
	return out
}
