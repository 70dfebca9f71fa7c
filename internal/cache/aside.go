package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/connectly/backend/internal/logger"
	"github.com/connectly/backend/internal/metrics"
)

// DefaultTTL bounds entries written through GetOrCompute when the call
// site does not pick its own TTL. Overridden from configuration at
// startup.
var DefaultTTL = 900 * time.Second

// GetOrCompute is the explicit cache-aside wrapper: the key and TTL
// stay visible at the call site. A hit returns the cached value
// unchanged; a miss runs compute and stores the result under key.
// Backend failures on either side degrade to plain computation. The
// bool reports whether the value came from the cache. name labels the
// hit/miss metrics.
func GetOrCompute(ctx context.Context, c Cache, name, key string, ttl time.Duration, compute func(ctx context.Context) (string, error)) (string, bool, error) {
	if c != nil {
		start := time.Now()
		val, err := c.Get(ctx, key)
		metrics.RecordCacheOperation("GET", name, time.Since(start))
		if err == nil {
			metrics.RecordCacheHit(name)
			return val, true, nil
		}
		if !errors.Is(err, ErrMiss) {
			logger.Log.Warn("Cache read failed, recomputing",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		metrics.RecordCacheMiss(name)
	}

	val, err := compute(ctx)
	if err != nil {
		return "", false, err
	}

	if c != nil {
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		start := time.Now()
		if err := c.Set(ctx, key, val, ttl); err != nil {
			logger.Log.Warn("Cache write failed",
				zap.String("key", key),
				zap.Error(err),
			)
		} else {
			metrics.RecordCacheOperation("SET", name, time.Since(start))
		}
	}
	return val, false, nil
}
