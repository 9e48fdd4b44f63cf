package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/events"
	"github.com/cityfeedback/feedback-service/internal/observability"
	"github.com/cityfeedback/feedback-service/internal/policy"
	"github.com/cityfeedback/feedback-service/internal/repository"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// FeedbackService coordinates feedback workflows.
type FeedbackService struct {
	store  repository.Store
	events eventPublisher
	instr  *observability.Instrumenter
}

// FeedbackDependencies bundles collaborators for the feedback service.
type FeedbackDependencies struct {
	Store        repository.Store
	Dispatcher   events.Dispatcher
	Instrumenter *observability.Instrumenter
	Logger       *zap.Logger
}

// CreateFeedbackInput describes a feedback submission.
type CreateFeedbackInput struct {
	CreatorID string
	Title     string
	Category  domain.Category
	Content   string
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	return &FeedbackService{
		store:  deps.Store,
		events: newEventPublisher(deps.Dispatcher, deps.Logger),
		instr:  deps.Instrumenter,
	}
}

// CreateFeedback stores a new PENDING item for an existing user. The creator
// lookup and the insert share one transaction so a concurrent account
// deletion cannot leave an orphaned item.
func (s *FeedbackService) CreateFeedback(ctx context.Context, input CreateFeedbackInput) (*domain.Feedback, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.CreateFeedback", func(ctx context.Context) (*domain.Feedback, error) {
		if missing := input.missingFields(); len(missing) > 0 {
			return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
		}
		var feedback *domain.Feedback
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			if _, err := loadUser(ctx, tx.Users(), input.CreatorID); err != nil {
				return err
			}
			item, err := domain.NewFeedback(input.Title, input.Category, input.Content, input.CreatorID)
			if err != nil {
				return err
			}
			if err := tx.Feedback().Save(ctx, item); err != nil {
				return err
			}
			feedback = item
			return nil
		})
		if err != nil {
			return nil, err
		}
		submitted, err := feedback.Submitted()
		if err != nil {
			return nil, err
		}
		s.events.publish(ctx, input.CreatorID, submitted)
		return feedback, nil
	})
}

func (in CreateFeedbackInput) missingFields() []string {
	var missing []string
	if strings.TrimSpace(in.CreatorID) == "" {
		missing = append(missing, "creator_id")
	}
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if in.Category == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.Content) == "" {
		missing = append(missing, "content")
	}
	return missing
}

// ApproveFeedback moves a PENDING item to OPEN.
func (s *FeedbackService) ApproveFeedback(ctx context.Context, actorID, feedbackID string) (*domain.Feedback, error) {
	return s.transition(ctx, "FeedbackService.ApproveFeedback", actorID, feedbackID, policy.ActionApproveFeedback,
		func(f *domain.Feedback) ([]domain.Event, error) { return f.Approve() })
}

// UpdateFeedbackStatus sets an arbitrary status, subject to CLOSED being terminal.
func (s *FeedbackService) UpdateFeedbackStatus(ctx context.Context, actorID, feedbackID string, status domain.Status) (*domain.Feedback, error) {
	return s.transition(ctx, "FeedbackService.UpdateFeedbackStatus", actorID, feedbackID, policy.ActionChangeFeedbackStatus,
		func(f *domain.Feedback) ([]domain.Event, error) { return f.UpdateStatus(status) })
}

// PublishFeedback makes an approved item public.
func (s *FeedbackService) PublishFeedback(ctx context.Context, actorID, feedbackID string) (*domain.Feedback, error) {
	return s.transition(ctx, "FeedbackService.PublishFeedback", actorID, feedbackID, policy.ActionPublishFeedback,
		func(f *domain.Feedback) ([]domain.Event, error) { return f.Publish() })
}

// UnpublishFeedback hides an item; hiding a hidden item is a no-op.
func (s *FeedbackService) UnpublishFeedback(ctx context.Context, actorID, feedbackID string) (*domain.Feedback, error) {
	return s.transition(ctx, "FeedbackService.UnpublishFeedback", actorID, feedbackID, policy.ActionUnpublishFeedback,
		func(f *domain.Feedback) ([]domain.Event, error) { return f.Unpublish(), nil })
}

func (s *FeedbackService) transition(
	ctx context.Context,
	operation, actorID, feedbackID string,
	action policy.Action,
	apply func(*domain.Feedback) ([]domain.Event, error),
) (*domain.Feedback, error) {
	return observability.Observe(ctx, s.instr, operation, func(ctx context.Context) (*domain.Feedback, error) {
		var (
			feedback *domain.Feedback
			emitted  []domain.Event
		)
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			if _, err := resolveActor(ctx, tx.Users(), actorID, action); err != nil {
				return err
			}
			var err error
			feedback, err = loadFeedback(ctx, tx.Feedback(), feedbackID)
			if err != nil {
				return err
			}
			emitted, err = apply(feedback)
			if err != nil {
				return err
			}
			return tx.Feedback().Save(ctx, feedback)
		})
		if err != nil {
			return nil, err
		}
		s.events.publish(ctx, actorID, emitted...)
		return feedback, nil
	})
}

// DeleteFeedback removes an item and all of its comments atomically.
func (s *FeedbackService) DeleteFeedback(ctx context.Context, adminID, feedbackID string) error {
	return s.instr.Run(ctx, "FeedbackService.DeleteFeedback", func(ctx context.Context) error {
		return s.store.WithinTx(ctx, func(tx repository.Store) error {
			if _, err := resolveActor(ctx, tx.Users(), adminID, policy.ActionDeleteFeedback); err != nil {
				return err
			}
			if _, err := loadFeedback(ctx, tx.Feedback(), feedbackID); err != nil {
				return err
			}
			if err := tx.Comments().DeleteByFeedbackID(ctx, feedbackID); err != nil {
				return err
			}
			return tx.Feedback().Delete(ctx, feedbackID)
		})
	})
}

// AddComment attaches a staff comment to an existing item.
func (s *FeedbackService) AddComment(ctx context.Context, feedbackID, authorID, content string) (*domain.Comment, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.AddComment", func(ctx context.Context) (*domain.Comment, error) {
		var comment *domain.Comment
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			if _, err := loadFeedback(ctx, tx.Feedback(), feedbackID); err != nil {
				return err
			}
			if _, err := resolveActor(ctx, tx.Users(), authorID, policy.ActionAddComment); err != nil {
				return err
			}
			var err error
			comment, err = domain.NewComment(feedbackID, authorID, content)
			if err != nil {
				return err
			}
			return tx.Comments().Save(ctx, comment)
		})
		if err != nil {
			return nil, err
		}
		added, err := comment.Added()
		if err != nil {
			return nil, err
		}
		s.events.publish(ctx, authorID, added)
		return comment, nil
	})
}

// GetComments lists the comments of an item in creation order.
func (s *FeedbackService) GetComments(ctx context.Context, feedbackID string) ([]*domain.Comment, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.GetComments", func(ctx context.Context) ([]*domain.Comment, error) {
		if _, err := loadFeedback(ctx, s.store.Feedback(), feedbackID); err != nil {
			return nil, err
		}
		return s.store.Comments().FindByFeedbackID(ctx, feedbackID)
	})
}

// DeleteFeedbacksByUserID removes every item created by the user, and their comments, atomically.
func (s *FeedbackService) DeleteFeedbacksByUserID(ctx context.Context, userID string) error {
	return s.instr.Run(ctx, "FeedbackService.DeleteFeedbacksByUserID", func(ctx context.Context) error {
		return s.store.WithinTx(ctx, func(tx repository.Store) error {
			return deleteFeedbacksByUser(ctx, tx, userID)
		})
	})
}

// deleteFeedbacksByUser must run inside the caller's transaction.
func deleteFeedbacksByUser(ctx context.Context, tx repository.Store, userID string) error {
	owned, err := tx.Feedback().FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, f := range owned {
		if err := tx.Comments().DeleteByFeedbackID(ctx, f.ID()); err != nil {
			return err
		}
	}
	return tx.Feedback().DeleteByUserID(ctx, userID)
}

func (s *FeedbackService) GetAllFeedback(ctx context.Context) ([]*domain.Feedback, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.GetAllFeedback", s.store.Feedback().FindAll)
}

func (s *FeedbackService) GetFeedbackByID(ctx context.Context, id string) (*domain.Feedback, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.GetFeedbackByID", func(ctx context.Context) (*domain.Feedback, error) {
		return loadFeedback(ctx, s.store.Feedback(), id)
	})
}

func (s *FeedbackService) GetFeedbackByUserID(ctx context.Context, userID string) ([]*domain.Feedback, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.GetFeedbackByUserID", func(ctx context.Context) ([]*domain.Feedback, error) {
		return s.store.Feedback().FindByUserID(ctx, userID)
	})
}

// GetPublishedFeedback lists public items, newest first.
func (s *FeedbackService) GetPublishedFeedback(ctx context.Context) ([]*domain.Feedback, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.GetPublishedFeedback", s.store.Feedback().FindPublished)
}
