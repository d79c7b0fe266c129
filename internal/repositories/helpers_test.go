package repositories_test

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
	"fitzty/internal/repositories"
	"fitzty/pkg/database"
)

var dbSeq atomic.Int64

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestDB opens an isolated in-memory SQLite database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := database.OpenAndMigrate(database.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createUser(t *testing.T, repo repositories.UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func createPost(t *testing.T, repo repositories.PostRepository, p models.Post) *models.Post {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = baseTime
	}
	require.NoError(t, repo.Create(context.Background(), &p))
	return &p
}

func ids(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
