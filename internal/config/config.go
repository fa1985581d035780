package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all relay configuration
type Config struct {
	Port          string
	StorageDriver string
	Database      DatabaseConfig
	Relay         RelayConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Quiet    bool
}

// RelayConfig holds mailbox and API behaviour knobs
type RelayConfig struct {
	MessageTTL           time.Duration
	PollLimit            int
	MinRecipientHashLen  int
	PurgeInterval        time.Duration
	ExposeInternalErrors bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	messageTTL, err := getDuration("MESSAGE_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	purgeInterval, err := getDuration("KV_PURGE_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	pollLimit, err := getInt("POLL_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	minHashLen, err := getInt("MIN_RECIPIENT_HASH_LEN", 2)
	if err != nil {
		return nil, err
	}

	driver := getEnv("STORAGE_DRIVER", StorageMemory)
	if driver != StorageMemory && driver != StoragePostgres {
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMemory, StoragePostgres, driver)
	}
	if messageTTL <= 0 {
		return nil, fmt.Errorf("MESSAGE_TTL must be positive")
	}
	if pollLimit <= 0 {
		return nil, fmt.Errorf("POLL_LIMIT must be positive")
	}

	return &Config{
		Port:          getEnv("PORT", "8787"),
		StorageDriver: driver,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "neochat_relay"),
			Quiet:    getEnv("DB_QUIET", "false") == "true",
		},
		Relay: RelayConfig{
			MessageTTL:           messageTTL,
			PollLimit:            pollLimit,
			MinRecipientHashLen:  minHashLen,
			PurgeInterval:        purgeInterval,
			ExposeInternalErrors: getEnv("EXPOSE_INTERNAL_ERRORS", "true") == "true",
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
