package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connectly/backend/internal/config"
	"github.com/connectly/backend/internal/logger"
	"github.com/connectly/backend/internal/models"
)

// Initialize opens the postgres connection and configures the pool.
func Initialize(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := gormlogger.Default
	if cfg.Environment == "development" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Log.Info("Database connected successfully")

	return db, nil
}

// Migrate runs auto-migration for all models
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// createIndexes creates performance indexes beyond what gorm tags declare
func createIndexes(db *gorm.DB) error {
	// Feed pages scan by recency; the composite index keeps the id tiebreak
	// in the same index.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_posts_created_at_id ON posts (created_at DESC, id DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_posts_author_privacy ON posts (author_id, privacy)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_comments_post_parent ON comments (post_id, parent_id)")

	if err := db.Error; err != nil {
		logger.Log.Warn("Index creation reported error", zap.Error(err))
	}
	return nil
}
