package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cityfeedback/feedback-service/internal/api/dto"
	"github.com/cityfeedback/feedback-service/internal/auth"
	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/service"
)

// AuthHandler exposes sign-up and login.
type AuthHandler struct {
	users  *service.UserService
	tokens *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(users *service.UserService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register handles POST /auth/register. Self-service accounts are always CITIZEN.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.users.CreateUser(c.UserContext(), req.Email, req.Password, domain.RoleCitizen)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, status int, user *domain.User) error {
	token, exp, err := h.tokens.GenerateToken(user.ID(), user.Role())
	if err != nil {
		return err
	}
	return data(c, status, fiber.Map{
		"user": dto.NewUserResponse(user),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}
