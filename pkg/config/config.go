package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	APIPrefix          string
	DBDriver           string
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration
	RedisURL           string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	StageCacheTTL      time.Duration
	DefaultUserID      string
}

// IsDevelopment reports whether raw error messages may be returned to clients
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only
func FromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8787"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxOpen, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdle, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	lifetimeMinutes, err := strconv.Atoi(getEnv("DB_CONN_MAX_LIFETIME_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME_MINUTES: %w", err)
	}

	rateRequests, err := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	rateWindow, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("STAGE_CACHE_TTL_SECONDS", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid STAGE_CACHE_TTL_SECONDS: %w", err)
	}

	driver := getEnv("DB_DRIVER", "sqlite")
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want sqlite or postgres", driver)
	}

	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		ServerPort:         port,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		APIPrefix:          "/" + strings.Trim(getEnv("API_PREFIX", "/api"), "/"),
		DBDriver:           driver,
		DatabaseURL:        getEnv("DATABASE_URL", "file:crm.db"),
		DBMaxOpenConns:     maxOpen,
		DBMaxIdleConns:     maxIdle,
		DBConnMaxLifetime:  time.Duration(lifetimeMinutes) * time.Minute,
		RedisURL:           os.Getenv("REDIS_URL"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		RateLimitRequests:  rateRequests,
		RateLimitWindow:    time.Duration(rateWindow) * time.Second,
		StageCacheTTL:      time.Duration(cacheTTL) * time.Second,
		DefaultUserID:      getEnv("DEFAULT_USER_ID", "user_1"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
