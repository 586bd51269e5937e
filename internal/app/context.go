package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/belovebe/taskmatch/internal/cache"
	"github.com/belovebe/taskmatch/internal/config"
	"github.com/belovebe/taskmatch/internal/geo"
	"github.com/belovebe/taskmatch/internal/notify"
)

// AppContext holds shared dependencies (DB, Redis, Logger, external
// collaborators) wired once in main and handed to services.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Notifier   notify.Notifier
	Geocoder   geo.Geocoder
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, notifier notify.Notifier, geocoder geo.Geocoder) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Notifier:   notifier,
		Geocoder:   geocoder,
	}
}
