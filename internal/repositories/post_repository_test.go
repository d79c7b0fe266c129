package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitzty/internal/models"
	"fitzty/internal/repositories"
)

func TestPostRepository_CreateIndexesTags(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	author := createUser(t, users, "author")

	p := createPost(t, posts, models.Post{UserID: author.ID, Tags: []string{"y2k", "street", "y2k", ""}, IsPublic: true})

	assert.Equal(t, []string{"y2k", "street"}, []string(p.Tags))
	var n int64
	require.NoError(t, db.Model(&models.PostTag{}).Where("post_id = ?", p.ID).Count(&n).Error)
	assert.Equal(t, int64(2), n)

	got, err := posts.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "author", got.User.Username)

	_, err = posts.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPostRepository_QueryPagination(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	author := createUser(t, users, "author")

	for i := 0; i < 15; i++ {
		createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true, CreatedAt: baseTime.Add(time.Duration(i) * time.Minute)})
	}

	ctx := context.Background()
	f := repositories.PostFilter{PublicOnly: true}
	page1, err := posts.Query(ctx, f, repositories.OrderRecent, 0, 10)
	require.NoError(t, err)
	page2, err := posts.Query(ctx, f, repositories.OrderRecent, 10, 10)
	require.NoError(t, err)

	assert.Len(t, page1, 10)
	assert.Len(t, page2, 5)

	seen := map[string]bool{}
	for _, id := range append(ids(page1), ids(page2)...) {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, 15)
	assert.True(t, page1[0].CreatedAt.After(page1[9].CreatedAt))
}

func TestPostRepository_QueryFilters(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	me := createUser(t, users, "me")
	other := createUser(t, users, "other")
	ctx := context.Background()

	tagMatch := createPost(t, posts, models.Post{UserID: other.ID, Tags: []string{"y2k"}, IsPublic: true, CreatedAt: baseTime.Add(1 * time.Minute)})
	styleMatch := createPost(t, posts, models.Post{UserID: other.ID, Style: "streetwear", IsPublic: true, CreatedAt: baseTime.Add(2 * time.Minute)})
	createPost(t, posts, models.Post{UserID: other.ID, Tags: []string{"boho"}, Style: "vintage", IsPublic: true, CreatedAt: baseTime.Add(3 * time.Minute)})
	createPost(t, posts, models.Post{UserID: me.ID, Tags: []string{"y2k"}, IsPublic: true, CreatedAt: baseTime.Add(4 * time.Minute)})
	createPost(t, posts, models.Post{UserID: other.ID, Tags: []string{"y2k"}, IsPublic: false, CreatedAt: baseTime.Add(5 * time.Minute)})

	got, err := posts.Query(ctx, repositories.PostFilter{
		ExcludeAuthor: me.ID,
		PublicOnly:    true,
		TagsAny:       []string{"y2k"},
		StylesAny:     []string{"streetwear"},
	}, repositories.OrderRecent, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{styleMatch.ID, tagMatch.ID}, ids(got))

	got, err = posts.Query(ctx, repositories.PostFilter{AuthorIn: []string{}}, repositories.OrderRecent, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got, "empty author set matches nothing")

	got, err = posts.Query(ctx, repositories.PostFilter{AuthorIn: []string{me.ID}}, repositories.OrderRecent, 0, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	after := baseTime.Add(3 * time.Minute)
	got, err = posts.Query(ctx, repositories.PostFilter{PublicOnly: true, CreatedAfter: &after}, repositories.OrderRecent, 0, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPostRepository_QueryEngagementOrder(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	author := createUser(t, users, "author")

	p1 := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true, CreatedAt: baseTime.Add(time.Hour)})
	p2 := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true, CreatedAt: baseTime})
	p3 := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true, CreatedAt: baseTime.Add(2 * time.Hour)})
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", p1.ID).Update("like_count", 10).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", p2.ID).Update("comment_count", 4).Error)

	got, err := posts.Query(context.Background(), repositories.PostFilter{PublicOnly: true}, repositories.OrderEngagement, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID, p1.ID, p3.ID}, ids(got))
}

func TestPostRepository_ListHistory(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	interactions := repositories.NewGORMInteractionRepository(db)
	me := createUser(t, users, "me")
	other := createUser(t, users, "other")
	ctx := context.Background()

	mine := createPost(t, posts, models.Post{UserID: me.ID, IsPublic: true})
	liked := createPost(t, posts, models.Post{UserID: other.ID, IsPublic: true})
	saved := createPost(t, posts, models.Post{UserID: other.ID, IsPublic: true})
	_, err := interactions.ToggleLike(ctx, me.ID, liked.ID)
	require.NoError(t, err)
	_, err = interactions.ToggleSave(ctx, me.ID, saved.ID)
	require.NoError(t, err)

	own, err := posts.ListByAuthor(ctx, me.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID}, ids(own))

	likedPosts, err := posts.ListLikedBy(ctx, me.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{liked.ID}, ids(likedPosts))

	savedPosts, err := posts.ListSavedBy(ctx, me.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{saved.ID}, ids(savedPosts))
}

func TestPostRepository_ZonedTimestamps(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	posts := repositories.NewGORMPostRepository(db)
	author := createUser(t, users, "zoned")
	ctx := context.Background()

	newYork := time.FixedZone("UTC-5", -5*3600)
	tokyo := time.FixedZone("UTC+9", 9*3600)

	fresh := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true, CreatedAt: baseTime.Add(-(6*24 + 20) * time.Hour).In(newYork)})
	createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true, CreatedAt: baseTime.Add(-8 * 24 * time.Hour).In(tokyo)})

	after := baseTime.Add(-7 * 24 * time.Hour).In(tokyo)
	got, err := posts.Query(ctx, repositories.PostFilter{PublicOnly: true, CreatedAfter: &after}, repositories.OrderRecent, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []string{fresh.ID}, ids(got))
	assert.True(t, got[0].CreatedAt.Equal(baseTime.Add(-(6*24+20)*time.Hour)))

	later := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true, CreatedAt: baseTime.Add(10 * time.Minute).In(newYork)})
	earlier := createPost(t, posts, models.Post{UserID: author.ID, IsPublic: true, CreatedAt: baseTime.Add(5 * time.Minute).In(tokyo)})

	since := baseTime
	got, err = posts.Query(ctx, repositories.PostFilter{CreatedAfter: &since}, repositories.OrderRecent, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{later.ID, earlier.ID}, ids(got), "newest instant first regardless of the caller's zone")
}
