// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for the SQLite databases (always absolute)
	RedisAddr        string // Optional; empty disables the metrics cache
	LogLevel         string
	RevalueSchedule  string // cron spec (with seconds) for the revaluation job
	MaintSchedule    string // cron spec (with seconds) for database maintenance
	Port             int
	DevMode          bool
	BatchWorkerCount int // goroutines used for batch valuation
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("BRICKFOLIO_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("PORT", 8080),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RevalueSchedule:  getEnv("REVALUE_SCHEDULE", "0 0 */6 * * *"),  // every six hours
		MaintSchedule:    getEnv("MAINTENANCE_SCHEDULE", "0 30 4 * * *"), // daily, off-peak
		BatchWorkerCount: getEnvAsInt("BATCH_WORKERS", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.BatchWorkerCount < 1 {
		return fmt.Errorf("batch worker count must be at least 1, got %d", c.BatchWorkerCount)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
