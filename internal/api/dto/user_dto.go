package dto

import (
	"time"

	"github.com/cityfeedback/feedback-service/internal/domain"
)

// RegisterRequest payload for self-service sign-up.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest payload for administrator-created accounts.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=CITIZEN STAFF ADMIN"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=CITIZEN STAFF ADMIN"`
}

// UpdatePasswordRequest payload.
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

// DemoDataResponse reports a demo-data cleanup.
type DemoDataResponse struct {
	DeletedUsers int `json:"deleted_users"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID(),
		Email:     u.Email().String(),
		Role:      u.Role(),
		CreatedAt: u.CreatedAt(),
	}
}

func NewUserList(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
