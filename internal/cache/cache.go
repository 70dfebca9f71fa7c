package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent. Backend failures
// return their own errors; callers treat both as a miss and recompute.
var ErrMiss = errors.New("cache: key not found")

// Cache is the minimal surface the feed layer needs. Redis backs it in
// production, Memory in tests.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern removes every key matching a glob pattern. Backends
	// without pattern support return an error and callers fall back to
	// exact deletes.
	DeletePattern(ctx context.Context, pattern string) error
	Close() error
}
