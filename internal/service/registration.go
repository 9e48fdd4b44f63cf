package service

import (
	"context"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/repository"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// registration creates accounts: uniqueness check, password rules, hashing, persistence.
// The storage constraint on e-mail remains the backstop for concurrent sign-ups.
type registration struct {
	users  repository.UserRepository
	hasher domain.PasswordHasher
}

// registerCitizen is the self-service path; the role is fixed.
func (r registration) registerCitizen(ctx context.Context, rawEmail, rawPassword string) (*domain.User, error) {
	return r.register(ctx, rawEmail, rawPassword, domain.RoleCitizen)
}

func (r registration) register(ctx context.Context, rawEmail, rawPassword string, role domain.UserRole) (*domain.User, error) {
	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	exists, err := r.users.ExistsByEmail(ctx, email.String())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email.String()})
	}
	password, err := domain.NewPassword(rawPassword, r.hasher)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	if role == domain.RoleCitizen {
		user, err = domain.RegisterCitizen(email, password)
	} else {
		user, err = domain.NewUser(email, password, role)
	}
	if err != nil {
		return nil, err
	}
	if err := r.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
