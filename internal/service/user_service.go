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

// UserService coordinates account workflows.
type UserService struct {
	store  repository.Store
	hasher domain.PasswordHasher
	events eventPublisher
	instr  *observability.Instrumenter
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Store        repository.Store
	Hasher       domain.PasswordHasher
	Dispatcher   events.Dispatcher
	Instrumenter *observability.Instrumenter
	Logger       *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		store:  deps.Store,
		hasher: deps.Hasher,
		events: newEventPublisher(deps.Dispatcher, deps.Logger),
		instr:  deps.Instrumenter,
	}
}

// CreateUser registers an account. The registration event is emitted once,
// after storage assigned the id.
func (s *UserService) CreateUser(ctx context.Context, email, rawPassword string, role domain.UserRole) (*domain.User, error) {
	return observability.Observe(ctx, s.instr, "UserService.CreateUser", func(ctx context.Context) (*domain.User, error) {
		return s.createUser(ctx, "", email, rawPassword, role)
	})
}

func (s *UserService) createUser(ctx context.Context, actorID, email, rawPassword string, role domain.UserRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	var user *domain.User
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		reg := registration{users: tx.Users(), hasher: s.hasher}
		var err error
		if role == domain.RoleCitizen {
			user, err = reg.registerCitizen(ctx, email, rawPassword)
		} else {
			user, err = reg.register(ctx, email, rawPassword, role)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	registered, err := user.Registered()
	if err != nil {
		return nil, err
	}
	s.events.publish(ctx, actorID, registered)
	return user, nil
}

// Login returns the user for valid credentials. Every failure looks the same to the caller.
func (s *UserService) Login(ctx context.Context, email, rawPassword string) (*domain.User, error) {
	return observability.Observe(ctx, s.instr, "UserService.Login", func(ctx context.Context) (*domain.User, error) {
		normalized, err := domain.NewEmail(email)
		if err != nil {
			return nil, apperrors.NewInvalidCredentials()
		}
		user, err := s.store.Users().FindByEmail(ctx, normalized.String())
		if err != nil {
			return nil, err
		}
		if user == nil || !user.Password().Matches(rawPassword, s.hasher) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return user, nil
	})
}

// CreateUserByAdmin lets an administrator create an account with any role.
func (s *UserService) CreateUserByAdmin(ctx context.Context, adminID, email, rawPassword string, role domain.UserRole) (*domain.User, error) {
	return observability.Observe(ctx, s.instr, "UserService.CreateUserByAdmin", func(ctx context.Context) (*domain.User, error) {
		if _, err := resolveActor(ctx, s.store.Users(), adminID, policy.ActionAdminCreateUser); err != nil {
			return nil, err
		}
		return s.createUser(ctx, adminID, email, rawPassword, role)
	})
}

// UpdateRole changes the role of userID on behalf of an administrator.
func (s *UserService) UpdateRole(ctx context.Context, adminID, userID string, role domain.UserRole) (*domain.User, error) {
	return observability.Observe(ctx, s.instr, "UserService.UpdateRole", func(ctx context.Context) (*domain.User, error) {
		var (
			target  *domain.User
			emitted []domain.Event
		)
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			var err error
			target, err = loadUser(ctx, tx.Users(), userID)
			if err != nil {
				return err
			}
			if _, err := resolveActor(ctx, tx.Users(), adminID, policy.ActionChangeRole); err != nil {
				return err
			}
			emitted, err = target.ChangeRole(role)
			if err != nil {
				return err
			}
			return tx.Users().Save(ctx, target)
		})
		if err != nil {
			return nil, err
		}
		s.events.publish(ctx, adminID, emitted...)
		return target, nil
	})
}

// UpdatePassword validates and stores a new password for userID.
func (s *UserService) UpdatePassword(ctx context.Context, userID, rawPassword string) error {
	return s.instr.Run(ctx, "UserService.UpdatePassword", func(ctx context.Context) error {
		return s.store.WithinTx(ctx, func(tx repository.Store) error {
			user, err := loadUser(ctx, tx.Users(), userID)
			if err != nil {
				return err
			}
			password, err := domain.NewPassword(rawPassword, s.hasher)
			if err != nil {
				return err
			}
			if err := user.ChangePassword(password); err != nil {
				return err
			}
			return tx.Users().Save(ctx, user)
		})
	})
}

// DeleteUser removes an account together with its feedback and their comments.
// Administrators cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, adminID, userID string) error {
	return s.instr.Run(ctx, "UserService.DeleteUser", func(ctx context.Context) error {
		return s.store.WithinTx(ctx, func(tx repository.Store) error {
			if _, err := resolveActor(ctx, tx.Users(), adminID, policy.ActionDeleteUser); err != nil {
				return err
			}
			if adminID == userID {
				return apperrors.NewForbidden("administrators cannot delete their own account", map[string]any{"id": userID})
			}
			if _, err := loadUser(ctx, tx.Users(), userID); err != nil {
				return err
			}
			if err := deleteFeedbacksByUser(ctx, tx, userID); err != nil {
				return err
			}
			return tx.Users().Delete(ctx, userID)
		})
	})
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	return observability.Observe(ctx, s.instr, "UserService.GetAllUsers", s.store.Users().FindAll)
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return observability.Observe(ctx, s.instr, "UserService.GetUserByID", func(ctx context.Context) (*domain.User, error) {
		return loadUser(ctx, s.store.Users(), id)
	})
}

// EnsureBootstrapAdmin creates the initial administrator unless an account
// with that e-mail already exists. It reports whether an account was created.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, email, rawPassword string) (bool, error) {
	return observability.Observe(ctx, s.instr, "UserService.EnsureBootstrapAdmin", func(ctx context.Context) (bool, error) {
		if strings.TrimSpace(rawPassword) == "" {
			return false, nil
		}
		exists, err := s.store.Users().ExistsByEmail(ctx, email)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
		_, err = s.createUser(ctx, "", email, rawPassword, domain.RoleAdmin)
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			return false, nil
		}
		return err == nil, err
	})
}

// IsDemoEmail matches the addresses used by seeded demo accounts.
func IsDemoEmail(email string) bool {
	normalized := domain.NormalizeEmail(email)
	return strings.HasPrefix(normalized, "demo.") || strings.Contains(normalized, "@example.com")
}

// DeleteDemoData removes every non-admin demo account with its feedback and
// comments in one transaction and returns how many accounts were removed.
func (s *UserService) DeleteDemoData(ctx context.Context, adminID string) (int, error) {
	return observability.Observe(ctx, s.instr, "UserService.DeleteDemoData", func(ctx context.Context) (int, error) {
		deleted := 0
		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			if _, err := resolveActor(ctx, tx.Users(), adminID, policy.ActionDeleteDemoData); err != nil {
				return err
			}
			users, err := tx.Users().FindAll(ctx)
			if err != nil {
				return err
			}
			for _, u := range users {
				if u.Role() == domain.RoleAdmin || !IsDemoEmail(u.Email().String()) {
					continue
				}
				if err := deleteFeedbacksByUser(ctx, tx, u.ID()); err != nil {
					return err
				}
				if err := tx.Users().Delete(ctx, u.ID()); err != nil {
					return err
				}
				deleted++
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
		return deleted, nil
	})
}
