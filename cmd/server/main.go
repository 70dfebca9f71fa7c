package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/connectly/backend/internal/auth"
	"github.com/connectly/backend/internal/cache"
	"github.com/connectly/backend/internal/config"
	"github.com/connectly/backend/internal/database"
	"github.com/connectly/backend/internal/feed"
	"github.com/connectly/backend/internal/handlers"
	"github.com/connectly/backend/internal/logger"
	"github.com/connectly/backend/internal/metrics"
	"github.com/connectly/backend/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	logger.Log.Info("Connectly server starting",
		zap.String("environment", cfg.Environment),
	)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional: without it every feed page recomputes.
	var pageCache cache.Cache
	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Log.Warn("Redis unavailable, feed caching disabled", zap.Error(err))
	} else {
		pageCache = redisCache
		defer func() { _ = redisCache.Close() }()
	}

	metrics.Initialize()

	if cfg.CacheDefaultTTL > 0 {
		cache.DefaultTTL = cfg.CacheDefaultTTL
	}

	feedSvc := feed.NewService(db, pageCache, cfg.FeedCacheTTL)
	authSvc := auth.NewService(db, cfg.JWTSecret)
	h := handlers.NewHandlers(db, feedSvc, authSvc)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.RegisterRoutes(r.Group("/api/v1"), auth.Middleware(authSvc))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
