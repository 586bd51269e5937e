package main

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/cache"
	"github.com/belovebe/taskmatch/internal/config"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/geo"
	"github.com/belovebe/taskmatch/internal/httpapi"
	"github.com/belovebe/taskmatch/internal/logger"
	"github.com/belovebe/taskmatch/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	if cfg.Auth.BotToken == "" {
		log.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if err := db.SeedCategories(database); err != nil {
		log.Error("failed to seed categories", "err", err)
		os.Exit(1)
	}
	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed test data", "err", err)
			os.Exit(1)
		}
		log.Info("test data seeded")
	}

	rdb := cache.NewRedisCache(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx); err != nil {
		cancel()
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	cancel()

	appCtx := app.New(cfg, database, rdb, log,
		notify.NewTelegramNotifier(cfg),
		geo.NewNominatimGeocoder(cfg),
	)

	router := httpapi.NewRouter(appCtx)
	addr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info("server listening", "addr", addr, "env", cfg.App.ENV)
	if err := router.Run(addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
