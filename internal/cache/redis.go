package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/cardswap/internal/config"
)

const (
	keyPrefix = "cardswap"

	// bounds how long a refill that raced a toggle can serve an old total
	likeCountTTL = 10 * time.Minute
	// a day key plus slack, so a counter never outlives its UTC day by much
	searchRemainingTTL = 25 * time.Hour
)

// RedisCache holds derived counters that can always be rebuilt from the
// database: post like totals and today's remaining nearby searches.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache only requires Addr; Password and DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{Addr: cfg.Redis.Addr}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error { return c.Client.Ping(ctx).Err() }

func (c *RedisCache) Close() error { return c.Client.Close() }

func key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

func (c *RedisCache) KeyForLikeCount(postID string) string {
	return key("post", postID, "likes")
}

// UpdateLikeCount stores the total and starts its TTL.
func (c *RedisCache) UpdateLikeCount(ctx context.Context, postID string, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikeCount(postID), count, likeCountTTL).Err()
}

// GetLikeCount reports the cached total and whether it was present. Hits do
// not extend the TTL.
func (c *RedisCache) GetLikeCount(ctx context.Context, postID string) (int64, bool, error) {
	return c.readInt(ctx, c.KeyForLikeCount(postID))
}

func (c *RedisCache) ForgetLikeCount(ctx context.Context, postID string) error {
	return c.Client.Del(ctx, c.KeyForLikeCount(postID)).Err()
}

// KeyForSearchRemaining is scoped to one UTC day so yesterday's value never leaks.
func (c *RedisCache) KeyForSearchRemaining(userID, day string) string {
	return key("user", userID, "search", day)
}

func (c *RedisCache) SetSearchRemaining(ctx context.Context, userID, day string, remaining int) error {
	return c.Client.Set(ctx, c.KeyForSearchRemaining(userID, day), remaining, searchRemainingTTL).Err()
}

func (c *RedisCache) GetSearchRemaining(ctx context.Context, userID, day string) (int, bool, error) {
	n, ok, err := c.readInt(ctx, c.KeyForSearchRemaining(userID, day))
	return int(n), ok, err
}

// ForgetSearchRemaining drops the cached allowance, e.g. after a tier change.
func (c *RedisCache) ForgetSearchRemaining(ctx context.Context, userID, day string) error {
	return c.Client.Del(ctx, c.KeyForSearchRemaining(userID, day)).Err()
}

// readInt treats a missing key as a miss, not an error.
func (c *RedisCache) readInt(ctx context.Context, k string) (int64, bool, error) {
	val, err := c.Client.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// unparsable entries are dropped and reported as a miss
		_ = c.Client.Del(ctx, k).Err()
		return 0, false, nil
	}
	return n, true, nil
}
