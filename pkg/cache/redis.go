package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint for SCAN during pattern deletion.
const scanBatch = 100

// RedisBackend stores entries in Redis. The client should come from
// pkg/redis.Open so operation timeouts are bounded.
type RedisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend wraps an existing Redis client.
func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// Get returns the raw bytes stored under key, or ErrNotFound.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set stores data under key expiring after ttl.
func (b *RedisBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes the given keys.
func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.client.Del(ctx, keys...).Err()
}

// DeleteByPattern enumerates keys with SCAN and deletes them in batches.
// SCAN does not block the server the way KEYS does, so this is safe to run
// against a shared production Redis.
func (b *RedisBackend) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64

	for {
		keys, nextCursor, err := b.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := b.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op; the Redis client lifecycle is owned by the caller.
func (b *RedisBackend) Close() error {
	return nil
}

var _ Backend = (*RedisBackend)(nil)
