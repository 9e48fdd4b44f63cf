package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/events"
	"github.com/cityfeedback/feedback-service/internal/observability"
	"github.com/cityfeedback/feedback-service/internal/repository"
	"github.com/cityfeedback/feedback-service/internal/repository/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(raw string) (string, error) { return "plain:" + raw, nil }
func (plainHasher) Matches(raw, hash string) bool   { return hash == "plain:"+raw }

type fixture struct {
	ctx       context.Context
	store     repository.Store
	feedback  *FeedbackService
	users     *UserService
	published []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.NewStore())
}

func newFixtureWithStore(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: store}
	dispatcher := events.NewInMemoryDispatcher(nil)
	dispatcher.SubscribeAll(func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	})
	instr := observability.NewInstrumenter(nil, observability.NewMetrics())
	f.feedback = NewFeedbackService(FeedbackDependencies{Store: store, Dispatcher: dispatcher, Instrumenter: instr})
	f.users = NewUserService(UserDependencies{Store: store, Hasher: plainHasher{}, Dispatcher: dispatcher, Instrumenter: instr})
	return f
}

func (f *fixture) user(t *testing.T, email string, role domain.UserRole) *domain.User {
	t.Helper()
	u, err := f.users.CreateUser(f.ctx, email, "Abcdef12", role)
	require.NoError(t, err)
	return u
}

func (f *fixture) submit(t *testing.T, creator *domain.User, title string) *domain.Feedback {
	t.Helper()
	item, err := f.feedback.CreateFeedback(f.ctx, CreateFeedbackInput{
		CreatorID: creator.ID(),
		Title:     title,
		Category:  domain.CategoryTraffic,
		Content:   "details about " + title,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) eventsOfType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range f.published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// faultyStore fails feedback deletions so cascades can be checked for rollback.
type faultyStore struct {
	repository.Store
	err error
}

func (s faultyStore) Feedback() repository.FeedbackRepository {
	return failingFeedbackRepository{FeedbackRepository: s.Store.Feedback(), err: s.err}
}

func (s faultyStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(faultyStore{Store: tx, err: s.err})
	})
}

type failingFeedbackRepository struct {
	repository.FeedbackRepository
	err error
}

func (r failingFeedbackRepository) Delete(context.Context, string) error         { return r.err }
func (r failingFeedbackRepository) DeleteByUserID(context.Context, string) error { return r.err }

var errDiskFull = errors.New("disk full")

// txOnlyStore rejects writes issued outside WithinTx. The tx store handed to
// fn is the unwrapped one, so writes inside a transaction go through.
type txOnlyStore struct {
	repository.Store
}

func (s txOnlyStore) Users() repository.UserRepository {
	return txOnlyUsers{UserRepository: s.Store.Users()}
}

func (s txOnlyStore) Feedback() repository.FeedbackRepository {
	return txOnlyFeedback{FeedbackRepository: s.Store.Feedback()}
}

type txOnlyUsers struct{ repository.UserRepository }

func (txOnlyUsers) Save(context.Context, *domain.User) error { return errWriteOutsideTx }

type txOnlyFeedback struct{ repository.FeedbackRepository }

func (txOnlyFeedback) Save(context.Context, *domain.Feedback) error { return errWriteOutsideTx }

var errWriteOutsideTx = errors.New("write outside transaction")
