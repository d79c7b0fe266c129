package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFollows is an in-memory follow graph that counts list calls.
type fakeFollows struct {
	edges     map[string]map[string]bool
	listCalls int
	failList  bool
}

func newFakeFollows() *fakeFollows { return &fakeFollows{edges: map[string]map[string]bool{}} }

func (f *fakeFollows) Create(_ context.Context, a, b string) (bool, error) {
	if f.edges[a] == nil {
		f.edges[a] = map[string]bool{}
	}
	if f.edges[a][b] {
		return false, nil
	}
	f.edges[a][b] = true
	return true, nil
}

func (f *fakeFollows) Delete(_ context.Context, a, b string) (bool, error) {
	if !f.edges[a][b] {
		return false, nil
	}
	delete(f.edges[a], b)
	return true, nil
}

func (f *fakeFollows) ListFolloweeIDs(_ context.Context, a string) ([]string, error) {
	f.listCalls++
	if f.failList {
		return nil, errors.New("db down")
	}
	out := []string{}
	for b := range f.edges[a] {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeFollows) ListFollowerIDs(_ context.Context, b string) ([]string, error) {
	f.listCalls++
	out := []string{}
	for a, set := range f.edges {
		if set[b] {
			out = append(out, a)
		}
	}
	return out, nil
}

func setupCache(t *testing.T) (*miniredis.Miniredis, *fakeFollows, *FollowCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	inner := newFakeFollows()
	c := NewFollowCache(inner, client, time.Minute, nil).(*FollowCache)
	return mr, inner, c
}

func TestFollowCache_ReadThrough(t *testing.T) {
	mr, inner, c := setupCache(t)
	ctx := context.Background()
	_, err := c.Create(ctx, "a", "b")
	require.NoError(t, err)

	ids, err := c.ListFolloweeIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
	assert.True(t, mr.Exists("followees:a"))

	ids, err = c.ListFolloweeIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
	assert.Equal(t, 1, inner.listCalls, "second read is served from redis")
}

func TestFollowCache_InvalidatesOnWrite(t *testing.T) {
	mr, inner, c := setupCache(t)
	ctx := context.Background()

	ids, err := c.ListFolloweeIDs(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, ids)
	_, err = c.ListFollowerIDs(ctx, "b")
	require.NoError(t, err)

	_, err = c.Create(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, mr.Exists("followees:a"))
	assert.False(t, mr.Exists("followers:b"))

	ids, err = c.ListFolloweeIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	_, err = c.Delete(ctx, "a", "b")
	require.NoError(t, err)
	ids, err = c.ListFolloweeIDs(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 4, inner.listCalls)
}

func TestFollowCache_TTL(t *testing.T) {
	mr, inner, c := setupCache(t)
	ctx := context.Background()

	_, err := c.ListFolloweeIDs(ctx, "a")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = c.ListFolloweeIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.listCalls)
}

func TestFollowCache_RedisDownFallsBack(t *testing.T) {
	mr, _, c := setupCache(t)
	ctx := context.Background()
	_, err := c.Create(ctx, "a", "b")
	require.NoError(t, err)
	mr.Close()

	ids, err := c.ListFolloweeIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestFollowCache_LoadErrorPropagates(t *testing.T) {
	_, inner, c := setupCache(t)
	inner.failList = true

	_, err := c.ListFolloweeIDs(context.Background(), "a")
	assert.Error(t, err)
}

func TestNewFollowCache_NilClient(t *testing.T) {
	inner := newFakeFollows()
	assert.Same(t, inner, NewFollowCache(inner, nil, time.Minute, nil))
}
