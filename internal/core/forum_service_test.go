package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/store"
)

func TestForum_PostsAndLikes(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, a := newUser(t, st, "a@example.com")
	_, b := newUser(t, st, "b@example.com")
	svc := NewForumService(st)

	post, err := svc.CreatePost(ctx, a, "anxiety", "  can't sleep before exams ")
	require.NoError(t, err)
	assert.Equal(t, "can't sleep before exams", post.Content)
	assert.False(t, post.IsProfessional)

	state, err := svc.ToggleLike(ctx, b, post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{PostID: post.ID, Liked: true, LikesCount: 1}, state)

	posts, err := svc.ListPosts(ctx, "anxiety", b)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Liked)
	assert.Equal(t, 1, posts[0].LikesCount)
	assert.False(t, posts[0].IsMine)

	posts, err = svc.ListPosts(ctx, "anxiety", a)
	require.NoError(t, err)
	assert.True(t, posts[0].IsMine)
	assert.True(t, post.IsMine)

	posts, err = svc.ListPosts(ctx, "anxiety", auth.Session{})
	require.NoError(t, err)
	assert.False(t, posts[0].Liked)
	assert.False(t, posts[0].IsMine)

	liked, err := svc.LikedPosts(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{post.ID}, liked)

	state, err = svc.ToggleLike(ctx, b, post.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{PostID: post.ID, Liked: false, LikesCount: 0}, state)

	_, err = svc.ToggleLike(ctx, b, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestForum_DefaultTopicAndValidation(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, a := newUser(t, st, "a@example.com")
	svc := NewForumService(st)

	_, err := svc.CreatePost(ctx, a, "general", "hello")
	require.NoError(t, err)
	posts, err := svc.ListPosts(ctx, "", auth.Session{})
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = svc.ListPosts(ctx, "sports", auth.Session{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreatePost(ctx, a, "sports", "hello")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreatePost(ctx, a, "general", "  ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreatePost(ctx, auth.Session{}, "general", "hi")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestForum_ProfessionalFlag(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, verified := newProfessional(t, st, "v@example.com", store.StatusVerified)
	_, pending := newProfessional(t, st, "p@example.com", store.StatusPending)
	svc := NewForumService(st)

	post, err := svc.CreatePost(ctx, verified, "family", "You are not alone.")
	require.NoError(t, err)
	assert.True(t, post.IsProfessional)

	other, err := svc.CreatePost(ctx, pending, "family", "Hi")
	require.NoError(t, err)
	assert.False(t, other.IsProfessional)

	c, err := svc.AddComment(ctx, verified, other.ID, "Welcome")
	require.NoError(t, err)
	assert.True(t, c.IsProfessional)
	_, err = svc.AddComment(ctx, pending, other.ID, "Thanks")
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, other.ID, pending)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Welcome", comments[0].Content)
	assert.Equal(t, "Thanks", comments[1].Content)
	assert.False(t, comments[0].IsMine)
	assert.True(t, comments[1].IsMine)

	comments, err = svc.ListComments(ctx, other.ID, auth.Session{})
	require.NoError(t, err)
	assert.False(t, comments[1].IsMine)

	_, err = svc.AddComment(ctx, verified, "missing", "hi")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.ListComments(ctx, "missing", pending)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
