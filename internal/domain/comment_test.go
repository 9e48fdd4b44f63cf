package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComment(t *testing.T) {
	c, err := NewComment("f-1", "staff-1", "We are on it")
	require.NoError(t, err)
	assert.Equal(t, "f-1", c.FeedbackID())
	assert.Equal(t, "staff-1", c.AuthorID())
	assert.False(t, c.CreatedAt().IsZero())

	_, err = c.Added()
	require.Error(t, err)
	require.NoError(t, c.AssignID("c-1"))
	event, err := c.Added()
	require.NoError(t, err)
	assert.Equal(t, CommentAdded{CommentID: "c-1", FeedbackID: "f-1", AuthorID: "staff-1"}, event)
}

func TestNewCommentValidation(t *testing.T) {
	_, err := NewComment("f-1", "staff-1", "   ")
	requireValidation(t, err)

	_, err = NewComment("f-1", "staff-1", strings.Repeat("x", MaxCommentLength+1))
	requireValidation(t, err)

	_, err = NewComment("", "staff-1", "text")
	requireValidation(t, err)

	_, err = NewComment("f-1", "staff-1", strings.Repeat("x", MaxCommentLength))
	require.NoError(t, err)
}
