// Package cache decorates repositories with a redis read-through cache.
package cache

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"fitzty/internal/metrics"
	"fitzty/internal/repositories"
	"fitzty/pkg/logger"
)

// FollowCache caches followee and follower id lists per user. Writes go
// straight to the wrapped repository and drop the affected keys.
type FollowCache struct {
	next  repositories.FollowRepository
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

var _ repositories.FollowRepository = (*FollowCache)(nil)

// NewFollowCache wraps next. A nil client disables caching.
func NewFollowCache(next repositories.FollowRepository, client *redis.Client, ttl time.Duration, log *logger.Logger) repositories.FollowRepository {
	if client == nil {
		return next
	}
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FollowCache{next: next, redis: client, ttl: ttl, log: log}
}

func followeesKey(userID string) string { return fmt.Sprintf("followees:%s", userID) }
func followersKey(userID string) string { return fmt.Sprintf("followers:%s", userID) }

func (c *FollowCache) Create(ctx context.Context, followerID, followeeID string) (bool, error) {
	created, err := c.next.Create(ctx, followerID, followeeID)
	if err != nil {
		return false, err
	}
	c.invalidate(ctx, followerID, followeeID)
	return created, nil
}

func (c *FollowCache) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	removed, err := c.next.Delete(ctx, followerID, followeeID)
	if err != nil {
		return false, err
	}
	c.invalidate(ctx, followerID, followeeID)
	return removed, nil
}

func (c *FollowCache) ListFolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	return c.cached(ctx, followeesKey(followerID), func() ([]string, error) {
		return c.next.ListFolloweeIDs(ctx, followerID)
	})
}

func (c *FollowCache) ListFollowerIDs(ctx context.Context, followeeID string) ([]string, error) {
	return c.cached(ctx, followersKey(followeeID), func() ([]string, error) {
		return c.next.ListFollowerIDs(ctx, followeeID)
	})
}

// cached falls back to load on any redis failure; the cache is never a source of errors.
func (c *FollowCache) cached(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var ids []string
		if uErr := json.Unmarshal(data, &ids); uErr == nil && ids != nil {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return ids, nil
		}
	} else if err != redis.Nil {
		c.log.Warn("follow cache read failed", "key", key, "error", err)
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	ids, err := load()
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(ids); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("follow cache write failed", "key", key, "error", err)
		}
	}
	return ids, nil
}

func (c *FollowCache) invalidate(ctx context.Context, followerID, followeeID string) {
	if err := c.redis.Del(ctx, followeesKey(followerID), followersKey(followeeID)).Err(); err != nil {
		c.log.Warn("follow cache invalidation failed", "follower", followerID, "followee", followeeID, "error", err)
	}
}
