package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host        string
		Port        string
		CORSOrigins []string
	}

	Auth struct {
		BotToken  string
		JWTSecret string
		TokenTTL  time.Duration
	}

	Geocode struct {
		BaseURL   string
		UserAgent string
		Timeout   time.Duration
	}

	Discover struct {
		// OverfetchFactor widens the pre-filter candidate query so the
		// in-memory age/distance filters still have enough rows to fill
		// a page. Heuristic, tunable, no fill guarantee.
		OverfetchFactor int
		DefaultLimit    int
		MaxDistanceKm   float64
	}

	Tasks struct {
		// DeleteAnyStatus lets authors delete tasks regardless of
		// lifecycle state. When false, IN_PROGRESS and COMPLETED tasks
		// refuse deletion with a conflict.
		DeleteAnyStatus bool
	}
}

func New() *Config {
	cfg := &Config{}

	// App
	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "taskmatch")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "4000")
	cfg.HTTP.CORSOrigins = splitList(getEnvDefault("CORS_ORIGINS", "*"))

	// Auth
	cfg.Auth.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Auth.JWTSecret = getEnvDefault("JWT_SECRET", "")
	cfg.Auth.TokenTTL = getEnvDuration("TOKEN_TTL", 30*24*time.Hour)

	// Geocoding
	cfg.Geocode.BaseURL = getEnvDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org")
	cfg.Geocode.UserAgent = getEnvDefault("GEOCODE_USER_AGENT", "taskmatch/1.0")
	cfg.Geocode.Timeout = getEnvDuration("GEOCODE_TIMEOUT", 5*time.Second)

	// Discover
	cfg.Discover.OverfetchFactor = getEnvInt("DISCOVER_OVERFETCH", 5)
	cfg.Discover.DefaultLimit = getEnvInt("DISCOVER_LIMIT", 20)
	cfg.Discover.MaxDistanceKm = 50000

	// Tasks
	cfg.Tasks.DeleteAnyStatus = isTruthy(getEnvDefault("TASK_DELETE_ANY_STATUS", "true"))

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
