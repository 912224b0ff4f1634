package config

import (
	"errors"
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
	JobWorkerCount     int
	JobQueueSize       int
	SessionIdleTimeout time.Duration
	DefaultMaxCards    int
	DefaultMaxNewCards int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:flashdeck.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		JobWorkerCount:     envIntOr("JOB_WORKER_COUNT", 2),
		JobQueueSize:       envIntOr("JOB_QUEUE_SIZE", 64),
		SessionIdleTimeout: envDurationOr("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		DefaultMaxCards:    envIntOr("DEFAULT_MAX_CARDS", 0),
		DefaultMaxNewCards: envIntOr("DEFAULT_MAX_NEW_CARDS", 0),
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.JobWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("JOB_WORKER_COUNT must be at least 1 (got %d)", c.JobWorkerCount))
	}
	if c.JobQueueSize < 1 {
		errs = append(errs, fmt.Errorf("JOB_QUEUE_SIZE must be at least 1 (got %d)", c.JobQueueSize))
	}
	if c.SessionIdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive (got %s)", c.SessionIdleTimeout))
	}
	if c.DefaultMaxCards < 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_MAX_CARDS cannot be negative (got %d)", c.DefaultMaxCards))
	}
	if c.DefaultMaxNewCards < 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_MAX_NEW_CARDS cannot be negative (got %d)", c.DefaultMaxNewCards))
	}

	return errors.Join(errs...)
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
