package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/belovebe/taskmatch/internal/config"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if err := db.SeedCategories(database); err != nil {
		log.Error("failed to seed categories", "err", err)
		os.Exit(1)
	}
	if err := db.SeedTestData(database); err != nil {
		log.Error("failed to seed test data", "err", err)
		os.Exit(1)
	}

	log.Info("database seeded")
}
