package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
)

// DefaultRedisPrefix namespaces every key the cache writes.
const DefaultRedisPrefix = "onebox:"

// RedisCache stores resolutions in Redis with native key expiry, so several
// server processes share one cache.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis-backed cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: DefaultRedisPrefix,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", resolver.ErrCacheMiss
	}

	if err != nil {
		return "", err
	}

	return value, nil
}

func (r *RedisCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Ping checks the Redis connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Shutdown is a no-op for RedisCache (client managed externally).
func (r *RedisCache) Shutdown() error {
	return nil
}

var _ resolver.Cache = (*RedisCache)(nil)
