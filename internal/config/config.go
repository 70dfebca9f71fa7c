package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime settings for the service. It is built once in
// main and passed down by constructor injection; nothing in this package
// keeps global state.
type Config struct {
	Port        string
	Environment string

	DatabaseURL string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret []byte

	LogLevel string
	LogFile  string

	// FeedCacheTTL bounds how long a cached feed page may be served.
	FeedCacheTTL time.Duration
	// CacheDefaultTTL is the fallback TTL for general cache entries.
	CacheDefaultTTL time.Duration
}

// Load reads configuration from the environment.
// JWT_SECRET is the only hard requirement.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8787"),
		Environment:     getEnvOrDefault("ENVIRONMENT", "development"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisHost:       getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:       getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       []byte(secret),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:         getEnvOrDefault("LOG_FILE", "server.log"),
		FeedCacheTTL:    getEnvDuration("FEED_CACHE_TTL", 60*time.Second),
		CacheDefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", 900*time.Second),
	}

	if cfg.DatabaseURL == "" {
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "connectly")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration env var, falling back on parse failure
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
