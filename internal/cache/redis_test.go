package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cardswap/internal/cache"
	"github.com/oggyb/cardswap/internal/config"
)

func newCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	return cache.NewRedisCache(cfg), mr
}

func TestLikeCountRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	_, ok, err := c.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.UpdateLikeCount(ctx, "p1", 7))
	n, ok, err := c.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, 10*time.Minute, mr.TTL(c.KeyForLikeCount("p1")))

	// reads do not keep a value alive
	mr.FastForward(6 * time.Minute)
	_, ok, err = c.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	mr.FastForward(6 * time.Minute)
	_, ok, err = c.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchRemainingIsPerDay(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	require.NoError(t, c.SetSearchRemaining(ctx, "u1", "2026-03-01", 3))

	n, ok, err := c.GetSearchRemaining(ctx, "u1", "2026-03-01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok, err = c.GetSearchRemaining(ctx, "u1", "2026-03-02")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, c.Ping(context.Background()))
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestForgetAndCorruptEntries(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, c.UpdateLikeCount(ctx, "p1", 3))
	require.NoError(t, c.ForgetLikeCount(ctx, "p1"))
	_, ok, err := c.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mr.Set(c.KeyForLikeCount("p2"), "not-a-number"))
	_, ok, err = c.GetLikeCount(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(c.KeyForLikeCount("p2")))

	require.NoError(t, c.SetSearchRemaining(ctx, "u1", "2026-03-01", 2))
	require.NoError(t, c.ForgetSearchRemaining(ctx, "u1", "2026-03-01"))
	_, ok, err = c.GetSearchRemaining(ctx, "u1", "2026-03-01")
	require.NoError(t, err)
	assert.False(t, ok)
}
