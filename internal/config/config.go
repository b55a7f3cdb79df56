// Package config provides configuration for the devteam service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Generation backend
	GenerationURL    string
	GenerationAPIKey string
	GenerationModel  string

	// Team configuration file; empty means the built-in team is used.
	TeamConfigPath string

	// Timeouts
	StageTimeout time.Duration

	// Event bus
	HeartbeatInterval   time.Duration
	SubscriberQueueSize int

	// Requirements validation
	MaxRequirementsLength int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:              getEnvInt("HTTP_PORT", 5001),
		DatabaseURL:           getEnv("DATABASE_URL", "file:devteam.db?cache=shared&mode=rwc"),
		GenerationURL:         getEnv("GENERATION_URL", "http://localhost:4000"),
		GenerationAPIKey:      getEnv("GENERATION_API_KEY", ""),
		GenerationModel:       getEnv("GENERATION_MODEL", "gpt-4o-mini"),
		TeamConfigPath:        getEnv("TEAM_CONFIG_PATH", ""),
		StageTimeout:          time.Duration(getEnvInt("STAGE_TIMEOUT_MS", 300000)) * time.Millisecond,
		HeartbeatInterval:     time.Duration(getEnvInt("HEARTBEAT_INTERVAL_MS", 30000)) * time.Millisecond,
		SubscriberQueueSize:   getEnvInt("SUBSCRIBER_QUEUE_SIZE", 256),
		MaxRequirementsLength: getEnvInt("MAX_REQUIREMENTS_LENGTH", 10000),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
