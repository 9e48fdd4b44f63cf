package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
)

// Store groups the repositories that make up one unit of work.
type Store interface {
	Users() UserRepository
	Feedback() FeedbackRepository
	Comments() CommentRepository
	// WithinTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewPostgresStore returns a Store that runs statements on pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

func (s *PostgresStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *PostgresStore) Feedback() FeedbackRepository {
	return &feedbackRepository{db: s.db}
}

func (s *PostgresStore) Comments() CommentRepository {
	return &commentRepository{db: s.db}
}

// WithinTx begins a SERIALIZABLE transaction on the pool, so check-then-write
// sequences such as "creator exists, insert feedback" cannot interleave with a
// concurrent cascade. Calls made from inside an existing transaction join it
// instead of opening a savepoint.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	err := pgx.BeginTxFunc(ctx, s.pool, txOptions, func(tx pgx.Tx) error {
		return fn(&PostgresStore{db: tx})
	})
	return mapTxError(err)
}

var txOptions = pgx.TxOptions{IsoLevel: pgx.Serializable}

// mapTxError turns a lost serialization race into a retryable conflict.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == serializationFailure {
		return apperrors.NewConflict("concurrent update, please retry", nil)
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
