package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cityfeedback/feedback-service/internal/domain"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// CommentRepository manages staff comments on feedback.
type CommentRepository interface {
	Save(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	FindAll(ctx context.Context) ([]*domain.Comment, error)
	// FindByFeedbackID returns comments in creation order.
	FindByFeedbackID(ctx context.Context, feedbackID string) ([]*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByFeedbackID(ctx context.Context, feedbackID string) error
}

type commentRepository struct {
	db DBTX
}

const commentColumns = `id::text, feedback_id::text, author_id::text, content, created_at`

type commentRow struct {
	ID         string
	FeedbackID string
	AuthorID   string
	Content    string
	CreatedAt  time.Time
}

func (r *commentRow) scanTargets() []any {
	return []any{&r.ID, &r.FeedbackID, &r.AuthorID, &r.Content, &r.CreatedAt}
}

func (r commentRow) toDomain() *domain.Comment {
	return domain.RestoreComment(domain.CommentSnapshot{
		ID:         r.ID,
		FeedbackID: r.FeedbackID,
		AuthorID:   r.AuthorID,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
	})
}

// Comments are immutable, so Save only ever inserts.
func (r *commentRepository) Save(ctx context.Context, comment *domain.Comment) error {
	s := comment.Snapshot()
	if s.ID != "" {
		return nil
	}
	const query = `
        INSERT INTO comments (feedback_id, author_id, content, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id::text`
	var id string
	if err := r.db.QueryRow(ctx, query, s.FeedbackID, s.AuthorID, s.Content, s.CreatedAt).Scan(&id); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFound("feedback", map[string]any{"id": s.FeedbackID})
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return comment.AssignID(id)
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row commentRow
	err := r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id=$1`, id).Scan(row.scanTargets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	return row.toDomain(), nil
}

func (r *commentRepository) FindAll(ctx context.Context) ([]*domain.Comment, error) {
	return r.list(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY seq ASC`)
}

func (r *commentRepository) FindByFeedbackID(ctx context.Context, feedbackID string) ([]*domain.Comment, error) {
	if _, err := uuid.Parse(feedbackID); err != nil {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+commentColumns+` FROM comments WHERE feedback_id=$1 ORDER BY seq ASC`, feedbackID)
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (r *commentRepository) DeleteByFeedbackID(ctx context.Context, feedbackID string) error {
	if _, err := uuid.Parse(feedbackID); err != nil {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM comments WHERE feedback_id=$1`, feedbackID); err != nil {
		return fmt.Errorf("delete comments of feedback: %w", err)
	}
	return nil
}

func (r *commentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Comment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var result []*domain.Comment
	for rows.Next() {
		var row commentRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		result = append(result, row.toDomain())
	}
	return result, rows.Err()
}
