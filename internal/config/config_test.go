package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("FEED_CACHE_TTL", "")
	t.Setenv("CACHE_DEFAULT_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.FeedCacheTTL)
	assert.Equal(t, 900*time.Second, cfg.CacheDefaultTTL)
	assert.Contains(t, cfg.DatabaseURL, "dbname=connectly")
}

func TestLoadParsesDurations(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FEED_CACHE_TTL", "2m")
	t.Setenv("CACHE_DEFAULT_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.FeedCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.CacheDefaultTTL)

	t.Setenv("FEED_CACHE_TTL", "not-a-duration")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.FeedCacheTTL)
}
