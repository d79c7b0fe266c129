package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitzty/internal/services"
	"fitzty/pkg/apperr"
	"fitzty/pkg/rabbitmq"
)

func xpOf(t *testing.T, e *env, userID string) int {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	return u.XP
}

func TestPostService_Create(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "poster")

	post, progress, err := e.postSvc.Create(ctx, services.CreatePostInput{
		UserID:  u.ID,
		Content: "  first fit  ",
		Tags:    []string{" y2k ", "", "denim"},
		Style:   "street",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.True(t, post.IsPublic)
	assert.Equal(t, "first fit", post.Content)
	assert.Equal(t, []string{"y2k", "denim"}, []string(post.Tags))
	assert.Equal(t, fixedNow, post.CreatedAt)
	assert.Equal(t, 20, progress.XPAwarded)
	assert.Equal(t, 20, xpOf(t, e, u.ID))

	private := false
	hidden, _, err := e.postSvc.Create(ctx, services.CreatePostInput{UserID: u.ID, Images: []string{"a.png"}, IsPublic: &private})
	require.NoError(t, err)
	stored, err := e.posts.GetByID(ctx, hidden.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPublic)
	assert.Equal(t, 40, xpOf(t, e, u.ID))
}

func TestPostService_CreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "poster")

	_, _, err := e.postSvc.Create(ctx, services.CreatePostInput{UserID: u.ID, Content: "   "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = e.postSvc.Create(ctx, services.CreatePostInput{Content: "hi"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = e.postSvc.Create(ctx, services.CreatePostInput{UserID: "ghost", Content: "hi"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPostService_LikeAwardsAuthor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, "author")
	fan := e.user(t, "fan")
	post, _, err := e.postSvc.Create(ctx, services.CreatePostInput{UserID: author.ID, Content: "look"})
	require.NoError(t, err)
	require.Equal(t, 20, xpOf(t, e, author.ID))

	out, err := e.postSvc.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &services.ToggleOutcome{Active: true, Count: 1}, out)
	assert.Equal(t, 25, xpOf(t, e, author.ID))
	assert.Equal(t, 0, xpOf(t, e, fan.ID))

	out, err = e.postSvc.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &services.ToggleOutcome{Active: false, Count: 0}, out)
	assert.Equal(t, 25, xpOf(t, e, author.ID), "unliking takes nothing back")

	assert.Contains(t, e.events.Keys(), rabbitmq.RoutingInteractionToggled)
}

func TestPostService_SelfLikeEarnsNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, "author")
	post, _, err := e.postSvc.Create(ctx, services.CreatePostInput{UserID: author.ID, Content: "me"})
	require.NoError(t, err)

	out, err := e.postSvc.ToggleLike(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, out.Active)
	assert.Equal(t, 20, xpOf(t, e, author.ID))
}

func TestPostService_ToggleSave(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, "author")
	fan := e.user(t, "fan")
	post, _, err := e.postSvc.Create(ctx, services.CreatePostInput{UserID: author.ID, Content: "keep"})
	require.NoError(t, err)

	out, err := e.postSvc.ToggleSave(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &services.ToggleOutcome{Active: true, Count: 1}, out)
	assert.Equal(t, 20, xpOf(t, e, author.ID))

	out, err = e.postSvc.ToggleSave(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &services.ToggleOutcome{Active: false, Count: 0}, out)

	_, err = e.postSvc.ToggleSave(ctx, fan.ID, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = e.postSvc.ToggleLike(ctx, fan.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPostService_Comments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := e.user(t, "author")
	fan := e.user(t, "fan")
	post, _, err := e.postSvc.Create(ctx, services.CreatePostInput{UserID: author.ID, Content: "talk"})
	require.NoError(t, err)

	comment, progress, err := e.postSvc.Comment(ctx, fan.ID, post.ID, "  love it ")
	require.NoError(t, err)
	assert.Equal(t, "love it", comment.Content)
	assert.Equal(t, 3, progress.XPAwarded)
	assert.Equal(t, 3, xpOf(t, e, fan.ID))

	stored, err := e.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentCount)

	_, _, err = e.postSvc.Comment(ctx, fan.ID, post.ID, " ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = e.postSvc.Comment(ctx, fan.ID, "missing", "hello")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = e.postSvc.DeleteComment(ctx, author.ID, post.ID, comment.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "only the writer can delete")

	require.NoError(t, e.postSvc.DeleteComment(ctx, fan.ID, post.ID, comment.ID))
	stored, err = e.posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CommentCount)
}
