// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port         string
	DatabaseURL  string
	RedisURL     string
	GeminiAPIKey string
	GeminiModel  string
	OwnerID      string // optional: pin a stable session identity
	ResyncSpec   string // cron spec for forced snapshot resyncs
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	model := os.Getenv("GEMINI_MODEL")
	resync := os.Getenv("RESYNC_SPEC")
	if resync == "" {
		resync = "@every 5m"
	}

	return &Config{
		Port:         port,
		DatabaseURL:  dbURL,
		RedisURL:     redisURL,
		GeminiAPIKey: apiKey,
		GeminiModel:  model,
		OwnerID:      os.Getenv("OWNER_ID"),
		ResyncSpec:   resync,
	}, nil
}
