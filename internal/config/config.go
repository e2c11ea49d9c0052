package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends for run summaries.
const (
	BackendNone   = "none"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string // Console writes logs here; stdout belongs to the UI

	ScenarioDir  string // Extra user scenarios listed in the picker
	ExportDir    string
	ExportFormat string // json or yaml

	StorageBackend string
	RedisURL       string
	SQLitePath     string

	StrengthThreshold int
	TypingInterval    time.Duration // Zero disables the typing reveal
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:        getEnv("LOG_FILE", "classroom-sim.log"),
		ScenarioDir:    getEnv("SCENARIO_DIR", "./data/scenarios"),
		ExportDir:      getEnv("EXPORT_DIR", "./exports"),
		ExportFormat:   strings.ToLower(getEnv("EXPORT_FORMAT", "json")),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendNone)),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/summaries.db"),
	}

	threshold, err := strconv.Atoi(getEnv("STRENGTH_THRESHOLD", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid STRENGTH_THRESHOLD: %w", err)
	}
	if threshold < 1 {
		return nil, fmt.Errorf("STRENGTH_THRESHOLD must be at least 1, got %d", threshold)
	}
	cfg.StrengthThreshold = threshold

	interval, err := time.ParseDuration(getEnv("TYPING_INTERVAL", "30ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid TYPING_INTERVAL: %w", err)
	}
	if interval < 0 {
		return nil, fmt.Errorf("TYPING_INTERVAL must not be negative, got %s", interval)
	}
	cfg.TypingInterval = interval

	switch cfg.StorageBackend {
	case BackendNone, BackendRedis, BackendSQLite:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q, supported: %s, %s, %s",
			cfg.StorageBackend, BackendNone, BackendRedis, BackendSQLite)
	}

	switch cfg.ExportFormat {
	case "json", "yaml", "yml":
	default:
		return nil, fmt.Errorf("invalid EXPORT_FORMAT %q, supported: json, yaml", cfg.ExportFormat)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
