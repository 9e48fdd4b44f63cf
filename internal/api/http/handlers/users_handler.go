package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cityfeedback/feedback-service/internal/api/dto"
	"github.com/cityfeedback/feedback-service/internal/auth"
	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/policy"
	"github.com/cityfeedback/feedback-service/internal/service"
)

// UsersHandler exposes account administration.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.GetAllUsers(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserList(users))
}

// Get GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// Create POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseUserRole(req.Role)
	if err != nil {
		return err
	}
	user, err := h.users.CreateUserByAdmin(c.UserContext(), principal.UserID, req.Email, req.Password, role)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewUserResponse(user))
}

// UpdateRole PUT /users/:id/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseUserRole(req.Role)
	if err != nil {
		return err
	}
	user, err := h.users.UpdateRole(c.UserContext(), principal.UserID, c.Params("id"), role)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// UpdatePassword PUT /users/:id/password. Users may change their own password;
// changing someone else's requires ADMIN.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	targetID := c.Params("id")
	if _, err := auth.RequireSelfOr(c, targetID, policy.ActionManageOtherPassword); err != nil {
		return err
	}
	var req dto.UpdatePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.users.UpdatePassword(c.UserContext(), targetID, req.Password); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.UserContext(), principal.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteDemoData DELETE /users/demo-data.
func (h *UsersHandler) DeleteDemoData(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	deleted, err := h.users.DeleteDemoData(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.DemoDataResponse{DeletedUsers: deleted})
}
