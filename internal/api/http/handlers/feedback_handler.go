package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cityfeedback/feedback-service/internal/api/dto"
	"github.com/cityfeedback/feedback-service/internal/auth"
	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/service"
)

// FeedbackHandler manages feedback and comment endpoints.
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: feedbackService}
}

// Create POST /feedback.
func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateFeedbackRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return err
	}
	item, err := h.service.CreateFeedback(c.UserContext(), service.CreateFeedbackInput{
		CreatorID: principal.UserID,
		Title:     req.Title,
		Category:  category,
		Content:   req.Content,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewFeedbackResponse(item))
}

// List GET /feedback, optionally filtered by ?user_id=.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	var (
		items []*domain.Feedback
		err   error
	)
	if userID := c.Query("user_id"); userID != "" {
		items, err = h.service.GetFeedbackByUserID(c.UserContext(), userID)
	} else {
		items, err = h.service.GetAllFeedback(c.UserContext())
	}
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewFeedbackList(items))
}

// ListPublic GET /feedback/public.
func (h *FeedbackHandler) ListPublic(c *fiber.Ctx) error {
	items, err := h.service.GetPublishedFeedback(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewFeedbackList(items))
}

// Get GET /feedback/:id.
func (h *FeedbackHandler) Get(c *fiber.Ctx) error {
	item, err := h.service.GetFeedbackByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewFeedbackResponse(item))
}

// Approve PUT /feedback/:id/approve.
func (h *FeedbackHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.service.ApproveFeedback)
}

// Publish PUT /feedback/:id/publish.
func (h *FeedbackHandler) Publish(c *fiber.Ctx) error {
	return h.transition(c, h.service.PublishFeedback)
}

// Unpublish PUT /feedback/:id/unpublish.
func (h *FeedbackHandler) Unpublish(c *fiber.Ctx) error {
	return h.transition(c, h.service.UnpublishFeedback)
}

// UpdateStatus PUT /feedback/:id/status.
func (h *FeedbackHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	item, err := h.service.UpdateFeedbackStatus(c.UserContext(), principal.UserID, c.Params("id"), status)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewFeedbackResponse(item))
}

func (h *FeedbackHandler) transition(c *fiber.Ctx, apply func(ctx context.Context, actorID, feedbackID string) (*domain.Feedback, error)) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	item, err := apply(c.UserContext(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewFeedbackResponse(item))
}

// Delete DELETE /feedback/:id.
func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteFeedback(c.UserContext(), principal.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddComment POST /feedback/:id/comments.
func (h *FeedbackHandler) AddComment(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	comment, err := h.service.AddComment(c.UserContext(), c.Params("id"), principal.UserID, req.Content)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewCommentResponse(comment))
}

// ListComments GET /feedback/:id/comments.
func (h *FeedbackHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.service.GetComments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewCommentList(comments))
}

// Statistics GET /feedback/statistics.
func (h *FeedbackHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewStatisticsResponse(stats))
}

// StatusHistogram GET /feedback/statistics/status.
func (h *FeedbackHandler) StatusHistogram(c *fiber.Ctx) error {
	counts, err := h.service.StatusHistogram(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, counts)
}

// TitlesByCategory GET /feedback/statistics/category.
func (h *FeedbackHandler) TitlesByCategory(c *fiber.Ctx) error {
	groups, err := h.service.TitlesByCategory(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, groups)
}

// PublishedSummary GET /feedback/statistics/published.
func (h *FeedbackHandler) PublishedSummary(c *fiber.Ctx) error {
	summaries, err := h.service.PublishedActiveSummary(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewSummaryList(summaries))
}
