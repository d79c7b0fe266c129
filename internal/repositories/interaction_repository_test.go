package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitzty/internal/models"
	"fitzty/internal/repositories"
)

func TestInteractionRepository_ToggleLike(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	repo := repositories.NewGORMInteractionRepository(db)
	author := createUser(t, users, "author")
	fan := createUser(t, users, "fan")
	p := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true})
	ctx := context.Background()

	res, err := repo.ToggleLike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.True(t, res.Created)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, author.ID, res.AuthorID)

	res, err = repo.ToggleLike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.False(t, res.Created)
	assert.Equal(t, 0, res.Count)

	var likes int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)

	_, err = repo.ToggleLike(ctx, fan.ID, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestInteractionRepository_CounterNeverNegative(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	repo := repositories.NewGORMInteractionRepository(db)
	author := createUser(t, users, "author")
	p := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true})
	ctx := context.Background()

	// a save row written out of band, with the counter still at zero
	require.NoError(t, db.Create(&models.Save{ID: "s1", UserID: author.ID, PostID: p.ID}).Error)

	res, err := repo.ToggleSave(ctx, author.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, 0, res.Count)
}

func TestInteractionRepository_Comments(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	repo := repositories.NewGORMInteractionRepository(db)
	author := createUser(t, users, "author")
	p := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true})
	ctx := context.Background()

	c := &models.Comment{UserID: author.ID, PostID: p.ID, Content: "love it"}
	require.NoError(t, repo.AddComment(ctx, c))
	assert.NotEmpty(t, c.ID)

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)

	err = repo.DeleteComment(ctx, p.ID, c.ID, "someone-else")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.DeleteComment(ctx, p.ID, c.ID, author.ID))
	got, err = posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentCount)

	err = repo.AddComment(ctx, &models.Comment{UserID: author.ID, PostID: "missing", Content: "x"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestInteractionRepository_ViewerMemberships(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	repo := repositories.NewGORMInteractionRepository(db)
	author := createUser(t, users, "author")
	viewer := createUser(t, users, "viewer")
	p1 := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true})
	p2 := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true})
	ctx := context.Background()

	_, err := repo.ToggleLike(ctx, viewer.ID, p1.ID)
	require.NoError(t, err)
	_, err = repo.ToggleSave(ctx, viewer.ID, p2.ID)
	require.NoError(t, err)

	liked, err := repo.LikedPostIDs(ctx, viewer.ID, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{p1.ID: true}, liked)

	saved, err := repo.SavedPostIDs(ctx, viewer.ID, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{p2.ID: true}, saved)

	empty, err := repo.LikedPostIDs(ctx, viewer.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
