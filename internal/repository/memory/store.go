// Package memory is an in-process repository.Store used by tests and by
// development runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/repository"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

type state struct {
	users    map[string]domain.UserSnapshot
	feedback map[string]domain.FeedbackSnapshot
	comments map[string]domain.CommentSnapshot
	// insertion order, used for stable listings
	order map[string]uint64
	seq   uint64
}

func newState() *state {
	return &state{
		users:    make(map[string]domain.UserSnapshot),
		feedback: make(map[string]domain.FeedbackSnapshot),
		comments: make(map[string]domain.CommentSnapshot),
		order:    make(map[string]uint64),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:    make(map[string]domain.UserSnapshot, len(s.users)),
		feedback: make(map[string]domain.FeedbackSnapshot, len(s.feedback)),
		comments: make(map[string]domain.CommentSnapshot, len(s.comments)),
		order:    make(map[string]uint64, len(s.order)),
		seq:      s.seq,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.feedback {
		c.feedback[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.order {
		c.order[k] = v
	}
	return c
}

func (s *state) nextID() string {
	id := uuid.NewString()
	s.seq++
	s.order[id] = s.seq
	return id
}

// Store keeps aggregates as snapshots so callers never share pointers with it.
// Transactions work on a private copy that replaces the committed state on
// success; writes outside a transaction wait for the running one.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state
}

// view is the state a repository reads and writes: committed or transactional.
type view interface {
	read(fn func(d *state))
	write(fn func(d *state) error) error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{db: s}
}

func (s *Store) Feedback() repository.FeedbackRepository {
	return &feedbackRepository{db: s}
}

func (s *Store) Comments() repository.CommentRepository {
	return &commentRepository{db: s}
}

// WithinTx serializes transactions. Other readers keep seeing the committed
// state until fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	work := s.data.clone()
	s.mu.Unlock()

	if err := fn(&txStore{work: work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read(fn func(d *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// write runs as its own one-statement transaction.
func (s *Store) write(fn func(d *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// txStore is the Store handed to a transaction body.
type txStore struct {
	mu   sync.Mutex
	work *state
}

func (t *txStore) Users() repository.UserRepository {
	return &userRepository{db: t}
}

func (t *txStore) Feedback() repository.FeedbackRepository {
	return &feedbackRepository{db: t}
}

func (t *txStore) Comments() repository.CommentRepository {
	return &commentRepository{db: t}
}

// WithinTx joins the running transaction.
func (t *txStore) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func (t *txStore) read(fn func(d *state)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.work)
}

func (t *txStore) write(fn func(d *state) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.work)
}

func sortByInsertion(d *state, ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return d.order[ids[i]] < d.order[ids[j]]
	})
}

type userRepository struct {
	db view
}

func (r *userRepository) Save(_ context.Context, user *domain.User) error {
	return r.db.write(func(d *state) error {
		snap := user.Snapshot()
		for id, existing := range d.users {
			if existing.Email == snap.Email && id != snap.ID {
				return apperrors.NewConflict("email already registered", map[string]any{"email": snap.Email})
			}
		}
		if snap.ID == "" {
			id := d.nextID()
			if err := user.AssignID(id); err != nil {
				return err
			}
			snap.ID = id
		} else if _, ok := d.users[snap.ID]; !ok {
			return apperrors.NewNotFound("user", map[string]any{"id": snap.ID})
		}
		d.users[snap.ID] = snap
		return nil
	})
}

func (r *userRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	var (
		snap domain.UserSnapshot
		ok   bool
	)
	r.db.read(func(d *state) { snap, ok = d.users[id] })
	if !ok {
		return nil, nil
	}
	return domain.RestoreUser(snap)
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	normalized := domain.NormalizeEmail(email)
	var (
		snap  domain.UserSnapshot
		found bool
	)
	r.db.read(func(d *state) {
		for _, u := range d.users {
			if u.Email == normalized {
				snap, found = u, true
				return
			}
		}
	})
	if !found {
		return nil, nil
	}
	return domain.RestoreUser(snap)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	user, err := r.FindByEmail(ctx, email)
	return user != nil, err
}

func (r *userRepository) FindAll(_ context.Context) ([]*domain.User, error) {
	var snaps []domain.UserSnapshot
	r.db.read(func(d *state) {
		ids := make([]string, 0, len(d.users))
		for id := range d.users {
			ids = append(ids, id)
		}
		sortByInsertion(d, ids)
		for _, id := range ids {
			snaps = append(snaps, d.users[id])
		}
	})
	result := make([]*domain.User, 0, len(snaps))
	for _, snap := range snaps {
		user, err := domain.RestoreUser(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, nil
}

func (r *userRepository) Delete(_ context.Context, id string) error {
	return r.db.write(func(d *state) error {
		delete(d.users, id)
		return nil
	})
}

type feedbackRepository struct {
	db view
}

func (r *feedbackRepository) Save(_ context.Context, feedback *domain.Feedback) error {
	return r.db.write(func(d *state) error {
		snap := feedback.Snapshot()
		if snap.ID == "" {
			id := d.nextID()
			if err := feedback.AssignID(id); err != nil {
				return err
			}
			snap.ID = id
		} else if _, ok := d.feedback[snap.ID]; !ok {
			return apperrors.NewNotFound("feedback", map[string]any{"id": snap.ID})
		}
		d.feedback[snap.ID] = snap
		return nil
	})
}

func (r *feedbackRepository) FindByID(_ context.Context, id string) (*domain.Feedback, error) {
	var (
		snap domain.FeedbackSnapshot
		ok   bool
	)
	r.db.read(func(d *state) { snap, ok = d.feedback[id] })
	if !ok {
		return nil, nil
	}
	return domain.RestoreFeedback(snap)
}

func (r *feedbackRepository) FindAll(_ context.Context) ([]*domain.Feedback, error) {
	return r.filter(func(domain.FeedbackSnapshot) bool { return true })
}

func (r *feedbackRepository) FindByUserID(_ context.Context, userID string) ([]*domain.Feedback, error) {
	return r.filter(func(f domain.FeedbackSnapshot) bool { return f.CreatorID == userID })
}

func (r *feedbackRepository) FindPublished(_ context.Context) ([]*domain.Feedback, error) {
	result, err := r.filter(func(f domain.FeedbackSnapshot) bool { return f.Published })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].FeedbackDate().After(result[j].FeedbackDate())
	})
	return result, nil
}

func (r *feedbackRepository) Delete(_ context.Context, id string) error {
	return r.db.write(func(d *state) error {
		delete(d.feedback, id)
		return nil
	})
}

func (r *feedbackRepository) DeleteByUserID(_ context.Context, userID string) error {
	return r.db.write(func(d *state) error {
		for id, f := range d.feedback {
			if f.CreatorID == userID {
				delete(d.feedback, id)
			}
		}
		return nil
	})
}

func (r *feedbackRepository) filter(keep func(domain.FeedbackSnapshot) bool) ([]*domain.Feedback, error) {
	var snaps []domain.FeedbackSnapshot
	r.db.read(func(d *state) {
		ids := make([]string, 0, len(d.feedback))
		for id, f := range d.feedback {
			if keep(f) {
				ids = append(ids, id)
			}
		}
		sortByInsertion(d, ids)
		for _, id := range ids {
			snaps = append(snaps, d.feedback[id])
		}
	})
	result := make([]*domain.Feedback, 0, len(snaps))
	for _, snap := range snaps {
		feedback, err := domain.RestoreFeedback(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, feedback)
	}
	return result, nil
}

type commentRepository struct {
	db view
}

func (r *commentRepository) Save(_ context.Context, comment *domain.Comment) error {
	return r.db.write(func(d *state) error {
		snap := comment.Snapshot()
		if snap.ID != "" {
			return nil
		}
		id := d.nextID()
		if err := comment.AssignID(id); err != nil {
			return err
		}
		snap.ID = id
		d.comments[id] = snap
		return nil
	})
}

func (r *commentRepository) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	var (
		snap domain.CommentSnapshot
		ok   bool
	)
	r.db.read(func(d *state) { snap, ok = d.comments[id] })
	if !ok {
		return nil, nil
	}
	return domain.RestoreComment(snap), nil
}

func (r *commentRepository) FindAll(_ context.Context) ([]*domain.Comment, error) {
	return r.filter(func(domain.CommentSnapshot) bool { return true }), nil
}

func (r *commentRepository) FindByFeedbackID(_ context.Context, feedbackID string) ([]*domain.Comment, error) {
	return r.filter(func(c domain.CommentSnapshot) bool { return c.FeedbackID == feedbackID }), nil
}

func (r *commentRepository) Delete(_ context.Context, id string) error {
	return r.db.write(func(d *state) error {
		delete(d.comments, id)
		return nil
	})
}

func (r *commentRepository) DeleteByFeedbackID(_ context.Context, feedbackID string) error {
	return r.db.write(func(d *state) error {
		for id, c := range d.comments {
			if c.FeedbackID == feedbackID {
				delete(d.comments, id)
			}
		}
		return nil
	})
}

func (r *commentRepository) filter(keep func(domain.CommentSnapshot) bool) []*domain.Comment {
	var result []*domain.Comment
	r.db.read(func(d *state) {
		ids := make([]string, 0, len(d.comments))
		for id, c := range d.comments {
			if keep(c) {
				ids = append(ids, id)
			}
		}
		sortByInsertion(d, ids)
		for _, id := range ids {
			result = append(result, domain.RestoreComment(d.comments[id]))
		}
	})
	return result
}
