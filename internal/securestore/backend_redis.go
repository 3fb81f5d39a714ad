package securestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"helpmoto/internal/sentinel"
)

// RedisBackend persists items in Redis for multi-instance deployments.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to the Redis instance at addr.
func NewRedisBackend(addr string) *RedisBackend {
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (b *RedisBackend) GetItem(ctx context.Context, key string) (string, error) {
	value, err := b.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get item: %w", err)
	}
	return value, nil
}

func (b *RedisBackend) SetItem(ctx context.Context, key string, value string) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set item: %w", err)
	}
	return nil
}

func (b *RedisBackend) DeleteItem(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection, for readiness probes.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close releases the client connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
