package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the dashboard backend.
type Config struct {
	HTTPAddr        string
	Env             string // "development" or "production"
	DatabaseType    string // "sqlite" or "postgres"
	DatabaseURL     string
	RetentionDays   int    // 0 disables the purge job
	RetentionAt     string // HH:MM, local server time
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables with sane defaults.
// A .env file is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		Env:             getEnv("ENV", "development"),
		DatabaseType:    strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabaseURL:     getEnv("DATABASE_URL", "eventdash.db"),
		RetentionAt:     getEnv("RETENTION_AT", "03:30"),
		ShutdownTimeout: 10 * time.Second,
	}

	switch cfg.DatabaseType {
	case "sqlite", "postgres":
	default:
		return cfg, fmt.Errorf("DB_TYPE must be sqlite or postgres, got %q", cfg.DatabaseType)
	}

	raw := strings.TrimSpace(os.Getenv("RETENTION_DAYS"))
	if raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			return cfg, fmt.Errorf("RETENTION_DAYS must be a non-negative integer, got %q", raw)
		}
		cfg.RetentionDays = days
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}
