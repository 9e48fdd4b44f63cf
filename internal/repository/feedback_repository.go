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

// FeedbackRepository defines persistence access for feedback items.
type FeedbackRepository interface {
	Save(ctx context.Context, feedback *domain.Feedback) error
	FindByID(ctx context.Context, id string) (*domain.Feedback, error)
	FindAll(ctx context.Context) ([]*domain.Feedback, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.Feedback, error)
	FindPublished(ctx context.Context) ([]*domain.Feedback, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type feedbackRepository struct {
	db DBTX
}

const feedbackColumns = `id::text, title, category, feedback_date, content, status, published, creator_id::text`

type feedbackRow struct {
	ID           string
	Title        string
	Category     string
	FeedbackDate time.Time
	Content      string
	Status       string
	Published    bool
	CreatorID    string
}

func (r *feedbackRow) scanTargets() []any {
	return []any{&r.ID, &r.Title, &r.Category, &r.FeedbackDate, &r.Content, &r.Status, &r.Published, &r.CreatorID}
}

func (r feedbackRow) toDomain() (*domain.Feedback, error) {
	return domain.RestoreFeedback(domain.FeedbackSnapshot{
		ID:           r.ID,
		Title:        r.Title,
		Category:     domain.Category(r.Category),
		FeedbackDate: r.FeedbackDate,
		Content:      r.Content,
		Status:       domain.Status(r.Status),
		Published:    r.Published,
		CreatorID:    r.CreatorID,
	})
}

func feedbackRowFromDomain(f *domain.Feedback) feedbackRow {
	s := f.Snapshot()
	return feedbackRow{
		ID:           s.ID,
		Title:        s.Title,
		Category:     string(s.Category),
		FeedbackDate: s.FeedbackDate,
		Content:      s.Content,
		Status:       string(s.Status),
		Published:    s.Published,
		CreatorID:    s.CreatorID,
	}
}

func (r *feedbackRepository) Save(ctx context.Context, feedback *domain.Feedback) error {
	row := feedbackRowFromDomain(feedback)
	if row.ID == "" {
		const query = `
        INSERT INTO feedback (title, category, feedback_date, content, status, published, creator_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id::text`
		var id string
		if err := r.db.QueryRow(ctx, query,
			row.Title,
			row.Category,
			row.FeedbackDate,
			row.Content,
			row.Status,
			row.Published,
			row.CreatorID,
		).Scan(&id); err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.NewNotFound("user", map[string]any{"id": row.CreatorID})
			}
			return fmt.Errorf("insert feedback: %w", err)
		}
		return feedback.AssignID(id)
	}

	// title, content, category, date and creator never change after creation.
	const query = `UPDATE feedback SET status=$1, published=$2 WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, row.Status, row.Published, row.ID)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("feedback", map[string]any{"id": row.ID})
	}
	return nil
}

func (r *feedbackRepository) FindByID(ctx context.Context, id string) (*domain.Feedback, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row feedbackRow
	err := r.db.QueryRow(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id=$1`, id).Scan(row.scanTargets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	return row.toDomain()
}

func (r *feedbackRepository) FindAll(ctx context.Context) ([]*domain.Feedback, error) {
	return r.list(ctx, `SELECT `+feedbackColumns+` FROM feedback ORDER BY feedback_date ASC, id ASC`)
}

func (r *feedbackRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Feedback, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE creator_id=$1 ORDER BY feedback_date ASC, id ASC`, userID)
}

func (r *feedbackRepository) FindPublished(ctx context.Context) ([]*domain.Feedback, error) {
	return r.list(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE published ORDER BY feedback_date DESC, id ASC`)
}

func (r *feedbackRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM feedback WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return nil
}

func (r *feedbackRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM feedback WHERE creator_id=$1`, userID); err != nil {
		return fmt.Errorf("delete feedback of user: %w", err)
	}
	return nil
}

func (r *feedbackRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Feedback, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var result []*domain.Feedback
	for rows.Next() {
		var row feedbackRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		feedback, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, feedback)
	}
	return result, rows.Err()
}
