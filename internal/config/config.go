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
	DataDir      string // Base directory for all databases (always absolute)
	Port         int
	LogLevel     string
	DevMode      bool
	PriceFeedURL string // Base URL of the upstream quote service

	Engine EngineConfig
}

// EngineConfig holds the scoring and settlement tunables
type EngineConfig struct {
	HalfLifeDays          float64 // Leaderboard decay half-life in days
	MinEarlyCloseProgress float64 // Minimum progress before a voluntary close is allowed
	MinScoringProgress    float64 // Below this progress accuracy is undefined
	PayoffMinMultiple     float64 // Lower payoff bound as a multiple of stake
	PayoffMaxMultiple     float64 // Upper payoff bound as a multiple of stake
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("CURVECAST_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:      absDataDir,
		Port:         getEnvAsInt("PORT", 8080),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		PriceFeedURL: getEnv("PRICE_FEED_URL", "http://localhost:9100"),
		Engine: EngineConfig{
			HalfLifeDays:          getEnvAsFloat("LEADERBOARD_HALF_LIFE_DAYS", 30),
			MinEarlyCloseProgress: getEnvAsFloat("MIN_EARLY_CLOSE_PROGRESS", 0.05),
			MinScoringProgress:    getEnvAsFloat("MIN_SCORING_PROGRESS", 0.01),
			PayoffMinMultiple:     getEnvAsFloat("PAYOFF_MIN_MULTIPLE", 0.1),
			PayoffMaxMultiple:     getEnvAsFloat("PAYOFF_MAX_MULTIPLE", 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configured tunables are coherent
func (c *Config) Validate() error {
	e := c.Engine
	if e.HalfLifeDays <= 0 {
		return fmt.Errorf("LEADERBOARD_HALF_LIFE_DAYS must be positive, got %v", e.HalfLifeDays)
	}
	if e.MinEarlyCloseProgress < 0 || e.MinEarlyCloseProgress > 1 {
		return fmt.Errorf("MIN_EARLY_CLOSE_PROGRESS must be in [0,1], got %v", e.MinEarlyCloseProgress)
	}
	if e.MinScoringProgress < 0 || e.MinScoringProgress > 1 {
		return fmt.Errorf("MIN_SCORING_PROGRESS must be in [0,1], got %v", e.MinScoringProgress)
	}
	if e.PayoffMinMultiple < 0 || e.PayoffMaxMultiple <= e.PayoffMinMultiple {
		return fmt.Errorf("payoff bounds invalid: min=%v max=%v", e.PayoffMinMultiple, e.PayoffMaxMultiple)
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
