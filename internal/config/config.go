package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	UserID             string
	RemoteBaseURL      string
	RemoteAPIKey       string
	SyncInterval       time.Duration
	SyncWorkerCount    int
	SyncQueueSize      int
	DecaySweepInterval time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:fretlog.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		UserID:             envOr("USER_ID", ""),
		RemoteBaseURL:      envOr("REMOTE_BASE_URL", ""),
		RemoteAPIKey:       envOr("REMOTE_API_KEY", ""),
		SyncInterval:       envDurationOr("SYNC_INTERVAL", 5*time.Minute),
		SyncWorkerCount:    envIntOr("SYNC_WORKER_COUNT", 1),
		SyncQueueSize:      envIntOr("SYNC_QUEUE_SIZE", 16),
		DecaySweepInterval: envDurationOr("DECAY_SWEEP_INTERVAL", 12*time.Hour),
	}
}

// Validate checks the configuration for values that would prevent startup.
// All problems are reported at once so a misconfigured deployment can be
// fixed in a single pass.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if c.SyncInterval <= 0 {
		problems = append(problems, "SYNC_INTERVAL must be positive")
	}
	if c.SyncWorkerCount <= 0 {
		problems = append(problems, "SYNC_WORKER_COUNT must be at least 1")
	}
	if c.SyncQueueSize <= 0 {
		problems = append(problems, "SYNC_QUEUE_SIZE must be at least 1")
	}
	if c.DecaySweepInterval <= 0 {
		problems = append(problems, "DECAY_SWEEP_INTERVAL must be positive")
	}
	if c.RemoteBaseURL == "" && c.RemoteAPIKey != "" {
		problems = append(problems, "REMOTE_API_KEY set without REMOTE_BASE_URL")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
