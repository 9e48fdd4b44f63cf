package domain

import (
	"time"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// User is the account aggregate. The id is assigned on persistence.
type User struct {
	id        string
	email     Email
	password  Password
	role      UserRole
	createdAt time.Time
}

// UserSnapshot is the flat representation used by persistence adapters.
type UserSnapshot struct {
	ID           string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
}

// RegisterCitizen creates a self-registered account. The role is always CITIZEN.
func RegisterCitizen(email Email, password Password) (*User, error) {
	return NewUser(email, password, RoleCitizen)
}

// NewUser creates an account with an explicit role, as done by administrators.
func NewUser(email Email, password Password, role UserRole) (*User, error) {
	if email.IsZero() {
		return nil, apperrors.NewValidationError("email is required", map[string]any{"field": "email"})
	}
	if password.Hash() == "" {
		return nil, apperrors.NewValidationError("password is required", map[string]any{"field": "password"})
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	return &User{
		email:     email,
		password:  password,
		role:      role,
		createdAt: time.Now().UTC(),
	}, nil
}

// RestoreUser rebuilds a User from storage.
func RestoreUser(s UserSnapshot) (*User, error) {
	email, err := NewEmail(s.Email)
	if err != nil {
		return nil, err
	}
	if !s.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(s.Role)})
	}
	return &User{
		id:        s.ID,
		email:     email,
		password:  PasswordFromHash(s.PasswordHash),
		role:      s.Role,
		createdAt: s.CreatedAt,
	}, nil
}

func (u *User) ID() string           { return u.id }
func (u *User) Email() Email         { return u.email }
func (u *User) Password() Password   { return u.password }
func (u *User) Role() UserRole       { return u.role }
func (u *User) CreatedAt() time.Time { return u.createdAt }

// AssignID records the identifier handed out by storage. It may only happen once.
func (u *User) AssignID(id string) error {
	if u.id != "" {
		return apperrors.NewValidationError("user already has an id", map[string]any{"id": u.id})
	}
	if id == "" {
		return apperrors.NewValidationError("user id must not be empty", nil)
	}
	u.id = id
	return nil
}

// Registered returns the registration event. It needs the persisted id.
func (u *User) Registered() (UserRegistered, error) {
	if u.id == "" {
		return UserRegistered{}, apperrors.NewValidationError("user must be persisted before registration is announced", nil)
	}
	return UserRegistered{UserID: u.id, Email: u.email.String()}, nil
}

// ChangeRole switches the role. Setting the current role again emits nothing.
func (u *User) ChangeRole(role UserRole) ([]Event, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	if role == u.role {
		return nil, nil
	}
	from := u.role
	u.role = role
	return []Event{UserRoleChanged{UserID: u.id, From: from, To: role}}, nil
}

func (u *User) ChangePassword(password Password) error {
	if password.Hash() == "" {
		return apperrors.NewValidationError("password is required", map[string]any{"field": "password"})
	}
	u.password = password
	return nil
}

func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:           u.id,
		Email:        u.email.String(),
		PasswordHash: u.password.Hash(),
		Role:         u.role,
		CreatedAt:    u.createdAt,
	}
}
