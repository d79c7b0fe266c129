package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fitzty/internal/models"
	"fitzty/internal/progression"
	"fitzty/internal/repositories"
	"fitzty/internal/services"
	"fitzty/pkg/database"
	"fitzty/pkg/llm"
)

var dbSeq atomic.Int64

// fixedNow is the pinned clock used by the sqlite backed tests.
var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	db           *gorm.DB
	users        *repositories.GORMUserRepository
	posts        *repositories.GORMPostRepository
	interactions *repositories.GORMInteractionRepository
	follows      repositories.FollowRepository
	challenges   *repositories.GORMChallengeRepository
	recs         *repositories.GORMRecommendationRepository
	closet       *repositories.GORMClosetRepository
	avatars      *repositories.GORMAvatarItemRepository
	events       *recordingPublisher

	activity *services.ActivityService
	feed     *services.FeedService
	postSvc  *services.PostService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenAndMigrate(database.Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	e := &env{
		db:           db,
		users:        repositories.NewGORMUserRepository(db),
		posts:        repositories.NewGORMPostRepository(db),
		interactions: repositories.NewGORMInteractionRepository(db),
		follows:      repositories.NewFollowRepository(db),
		challenges:   repositories.NewGORMChallengeRepository(db),
		recs:         repositories.NewGORMRecommendationRepository(db),
		closet:       repositories.NewGORMClosetRepository(db),
		avatars:      repositories.NewGORMAvatarItemRepository(db),
		events:       &recordingPublisher{},
	}
	clock := func() time.Time { return fixedNow }
	e.activity = services.NewActivityService(e.users, e.avatars, progression.StreakPolicy{}, e.events, nil).WithClock(clock)
	e.feed = services.NewFeedService(e.users, e.posts, e.follows, e.interactions, services.DefaultFeedConfig(), nil).WithClock(clock)
	e.postSvc = services.NewPostService(e.users, e.posts, e.interactions, e.activity, e.events, nil).WithClock(clock)
	return e
}

func (e *env) recommender(client llm.Client) *services.RecommendationService {
	return services.NewRecommendationService(e.users, e.posts, e.closet, e.recs, client,
		services.RecommendationConfig{Timeout: time.Second}, e.events, nil).
		WithClock(func() time.Time { return fixedNow })
}

func (e *env) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hashed"}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *env) post(t *testing.T, p models.Post) *models.Post {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = fixedNow.Add(-time.Hour)
	}
	require.NoError(t, e.posts.Create(context.Background(), &p))
	return &p
}

func (e *env) setCounters(t *testing.T, postID string, likes, comments, saves int) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.Post{}).Where("id = ?", postID).Updates(map[string]any{
		"like_count": likes, "comment_count": comments, "save_count": saves,
	}).Error)
}

func postIDs(posts []models.FeedPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
