package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cityfeedback/feedback-service/internal/domain"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// UserRepository defines persistence access for accounts. Find methods
// return (nil, nil) when nothing matches.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db DBTX
}

type userRow struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

func (r userRow) toDomain() (*domain.User, error) {
	return domain.RestoreUser(domain.UserSnapshot{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.UserRole(r.Role),
		CreatedAt:    r.CreatedAt,
	})
}

func userRowFromDomain(u *domain.User) userRow {
	s := u.Snapshot()
	return userRow{
		ID:           s.ID,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		Role:         string(s.Role),
		CreatedAt:    s.CreatedAt,
	}
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	row := userRowFromDomain(user)
	if row.ID == "" {
		const query = `
        INSERT INTO users (email, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id::text`
		var id string
		if err := r.db.QueryRow(ctx, query, row.Email, row.PasswordHash, row.Role, row.CreatedAt).Scan(&id); err != nil {
			return mapUserWriteError(err, row.Email)
		}
		return user.AssignID(id)
	}

	const query = `
        UPDATE users SET email=$1, password_hash=$2, role=$3
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query, row.Email, row.PasswordHash, row.Role, row.ID)
	if err != nil {
		return mapUserWriteError(err, row.Email)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("user", map[string]any{"id": row.ID})
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	const query = `
        SELECT id::text, email, password_hash, role, created_at
        FROM users WHERE id=$1`
	return r.findOne(ctx, query, id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id::text, email, password_hash, role, created_at
        FROM users WHERE email=$1`
	return r.findOne(ctx, query, domain.NormalizeEmail(email))
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, domain.NormalizeEmail(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	const query = `
        SELECT id::text, email, password_hash, role, created_at
        FROM users ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []*domain.User
	for rows.Next() {
		var row userRow
		if err := rows.Scan(&row.ID, &row.Email, &row.PasswordHash, &row.Role, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	err := r.db.QueryRow(ctx, query, arg).Scan(&row.ID, &row.Email, &row.PasswordHash, &row.Role, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return row.toDomain()
}

func mapUserWriteError(err error, email string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return fmt.Errorf("save user: %w", err)
}
