package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cityfeedback/feedback-service/internal/api/http/handlers"
	"github.com/cityfeedback/feedback-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Feedback       *handlers.FeedbackHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	if cfg.LoginLimiter != nil {
		authGroup.Use(cfg.LoginLimiter)
	}
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	feedback := app.Group("/feedback")
	feedback.Get("/public", cfg.Feedback.ListPublic)
	feedback.Get("/statistics", cfg.Feedback.Statistics)
	feedback.Get("/statistics/status", cfg.Feedback.StatusHistogram)
	feedback.Get("/statistics/category", cfg.Feedback.TitlesByCategory)
	feedback.Get("/statistics/published", cfg.Feedback.PublishedSummary)

	protectedFeedback := feedback.Group("", cfg.AuthMiddleware.Handle)
	protectedFeedback.Get("/", cfg.Feedback.List)
	protectedFeedback.Post("/", cfg.Feedback.Create)
	protectedFeedback.Get("/:id", cfg.Feedback.Get)
	protectedFeedback.Delete("/:id", cfg.Feedback.Delete)
	protectedFeedback.Put("/:id/approve", cfg.Feedback.Approve)
	protectedFeedback.Put("/:id/status", cfg.Feedback.UpdateStatus)
	protectedFeedback.Put("/:id/publish", cfg.Feedback.Publish)
	protectedFeedback.Put("/:id/unpublish", cfg.Feedback.Unpublish)
	protectedFeedback.Get("/:id/comments", cfg.Feedback.ListComments)
	protectedFeedback.Post("/:id/comments", cfg.Feedback.AddComment)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	// registered before /:id so the literal segment wins
	users.Delete("/demo-data", cfg.Users.DeleteDemoData)
	users.Get("/:id", cfg.Users.Get)
	users.Delete("/:id", cfg.Users.Delete)
	users.Put("/:id/role", cfg.Users.UpdateRole)
	users.Put("/:id/password", cfg.Users.UpdatePassword)
}
