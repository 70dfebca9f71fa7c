package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/connectly/backend/internal/config"
	"github.com/connectly/backend/internal/database"
	"github.com/connectly/backend/internal/logger"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		seedDev()
	case "clean":
		cleanSeed()
	default:
		fmt.Println("Usage: seed [dev|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  clean - Remove all data (use with caution)")
		os.Exit(1)
	}
}

func setup() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel, "seed.log"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg
}

func seedDev() {
	cfg := setup()

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := seed.NewSeeder(db).SeedDev(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete. All accounts use password 'password123'.")
}

func cleanSeed() {
	cfg := setup()

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.Follow{}, &models.Post{}, &models.User{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			log.Fatalf("Failed to clean table: %v", err)
		}
	}

	log.Println("All data removed.")
}
