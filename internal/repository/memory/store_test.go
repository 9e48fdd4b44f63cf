package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/repository"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

var _ repository.Store = (*Store)(nil)

func newUser(t *testing.T, email string) *domain.User {
	t.Helper()
	e, err := domain.NewEmail(email)
	require.NoError(t, err)
	u, err := domain.NewUser(e, domain.PasswordFromHash("hash"), domain.RoleCitizen)
	require.NoError(t, err)
	return u
}

func TestUserSaveAssignsIDAndEnforcesUniqueEmail(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := newUser(t, "anna@city.de")
	require.NoError(t, store.Users().Save(ctx, first))
	assert.NotEmpty(t, first.ID())

	dup := newUser(t, "ANNA@city.de")
	err := store.Users().Save(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Empty(t, dup.ID())

	exists, err := store.Users().ExistsByEmail(ctx, " Anna@City.de ")
	require.NoError(t, err)
	assert.True(t, exists)

	missing, err := store.Users().FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoredAggregatesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	f, err := domain.NewFeedback("Pothole", domain.CategoryTraffic, "big hole", "u-1")
	require.NoError(t, err)
	require.NoError(t, store.Feedback().Save(ctx, f))

	_, err = f.Approve()
	require.NoError(t, err)

	loaded, err := store.Feedback().FindByID(ctx, f.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, loaded.Status(), "unsaved mutation must not leak into the store")
}

func TestCommentsListedInCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var ids []string
	for _, text := range []string{"first", "second", "third"} {
		c, err := domain.NewComment("f-1", "s-1", text)
		require.NoError(t, err)
		require.NoError(t, store.Comments().Save(ctx, c))
		ids = append(ids, c.ID())
	}
	other, _ := domain.NewComment("f-2", "s-1", "elsewhere")
	require.NoError(t, store.Comments().Save(ctx, other))

	comments, err := store.Comments().FindByFeedbackID(ctx, "f-1")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i, c := range comments {
		assert.Equal(t, ids[i], c.ID())
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	f, _ := domain.NewFeedback("Pothole", domain.CategoryTraffic, "big hole", "u-1")
	require.NoError(t, store.Feedback().Save(ctx, f))
	c, _ := domain.NewComment(f.ID(), "s-1", "on it")
	require.NoError(t, store.Comments().Save(ctx, c))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Comments().DeleteByFeedbackID(ctx, f.ID()))
		return boom
	})
	require.ErrorIs(t, err, boom)

	comments, err := store.Comments().FindByFeedbackID(ctx, f.ID())
	require.NoError(t, err)
	assert.Len(t, comments, 1, "comment deletion must be rolled back")
}

func TestWithinTxCommitsAndNests(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	f, _ := domain.NewFeedback("Pothole", domain.CategoryTraffic, "big hole", "u-1")
	require.NoError(t, store.Feedback().Save(ctx, f))

	err := store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.WithinTx(ctx, func(inner repository.Store) error {
			return inner.Feedback().Delete(ctx, f.ID())
		})
	})
	require.NoError(t, err)

	loaded, err := store.Feedback().FindByID(ctx, f.ID())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFindPublishedNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, title := range []string{"older", "newer"} {
		f, err := domain.NewFeedback(title, domain.CategoryLighting, "text", "u-1")
		require.NoError(t, err)
		_, err = f.Approve()
		require.NoError(t, err)
		_, err = f.Publish()
		require.NoError(t, err)
		require.NoError(t, store.Feedback().Save(ctx, f))
	}
	hidden, _ := domain.NewFeedback("hidden", domain.CategoryLighting, "text", "u-1")
	require.NoError(t, store.Feedback().Save(ctx, hidden))

	published, err := store.Feedback().FindPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.False(t, published[0].FeedbackDate().Before(published[1].FeedbackDate()))
}

func TestRollbackKeepsWritesCommittedOutsideTheTx(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	outside := newUser(t, "anna@city.de")

	saved := make(chan error, 1)
	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		go func() { saved <- store.Users().Save(ctx, outside) }()
		inside := newUser(t, "bob@city.de")
		require.NoError(t, tx.Users().Save(ctx, inside))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, <-saved)

	loaded, err := store.Users().FindByID(ctx, outside.ID())
	require.NoError(t, err)
	assert.NotNil(t, loaded, "a write outside the transaction must survive its rollback")

	rolledBack, err := store.Users().ExistsByEmail(ctx, "bob@city.de")
	require.NoError(t, err)
	assert.False(t, rolledBack)
}

func TestUncommittedWritesAreInvisibleOutsideTheTx(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	f, _ := domain.NewFeedback("Pothole", domain.CategoryTraffic, "big hole", "u-1")
	require.NoError(t, store.Feedback().Save(ctx, f))
	c, _ := domain.NewComment(f.ID(), "s-1", "on it")
	require.NoError(t, store.Comments().Save(ctx, c))

	err := store.WithinTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Comments().DeleteByFeedbackID(ctx, f.ID()))

		inTx, err := tx.Comments().FindByFeedbackID(ctx, f.ID())
		require.NoError(t, err)
		assert.Empty(t, inTx)

		committed, err := store.Comments().FindByFeedbackID(ctx, f.ID())
		require.NoError(t, err)
		assert.Len(t, committed, 1, "half-done cascade must not be visible")
		return tx.Feedback().Delete(ctx, f.ID())
	})
	require.NoError(t, err)

	comments, err := store.Comments().FindByFeedbackID(ctx, f.ID())
	require.NoError(t, err)
	assert.Empty(t, comments)
	gone, err := store.Feedback().FindByID(ctx, f.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)
}
