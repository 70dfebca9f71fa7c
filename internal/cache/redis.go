package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/connectly/backend/internal/logger"
)

// RedisCache wraps a redis.Client with centralized connection pooling.
type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates and initializes a Redis client with connection pooling
func NewRedisCache(host, port, password string) (*RedisCache, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Log.Info("Redis client connected successfully",
		zap.String("address", addr),
	)

	return &RedisCache{client: client}, nil
}

// Get retrieves a value, mapping redis.Nil to ErrMiss.
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := rc.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Set stores a value with expiration
func (rc *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes exact keys
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rc.client.Del(ctx, keys...).Err()
}

// DeletePattern removes all keys matching a glob pattern. KEYS is
// acceptable at this keyspace size; the feed keyspace is bounded by
// users x pages.
func (rc *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	keys, err := rc.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	logger.Log.Debug("Cache pattern invalidated",
		zap.String("pattern", pattern),
		zap.Int("keys", len(keys)),
	)
	return nil
}

// Close closes the Redis connection gracefully
func (rc *RedisCache) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}
