package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/belovebe/taskmatch/internal/config"
	"github.com/redis/go-redis/v9"
)

// unreadTTL bounds staleness if an invalidation is ever missed.
const unreadTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForUnreadTotal is the cache key for a user's executor-side unread
// message total.
func (c *RedisCache) KeyForUnreadTotal(userID uint64) string {
	return fmt.Sprintf("unread:total:%d", userID)
}

// GetUnreadTotal reads a cached unread total. The second return value
// reports whether the cache held a usable value; a miss is not an error.
func (c *RedisCache) GetUnreadTotal(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForUnreadTotal(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}

	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, unreadTTL).Err()
	return n, true, nil
}

// UpdateUnreadTotal stores a freshly computed unread total with TTL.
func (c *RedisCache) UpdateUnreadTotal(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForUnreadTotal(userID), count, unreadTTL).Err()
}

// InvalidateUnreadTotal drops the cached total after a message write or
// mark-read so the next poll recomputes from the database.
func (c *RedisCache) InvalidateUnreadTotal(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.KeyForUnreadTotal(userID)).Err()
}
