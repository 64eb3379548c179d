package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Storage configuration
	DatabasePath string

	// History engine configuration
	MaxHistorySize       int
	MaxTagsPerNode       int
	MaxBranches          int
	MaxDescriptionLength int

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableCORS bool
	EnableAuth bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		DatabasePath: getEnv("DATABASE_PATH", "history.db"),

		MaxHistorySize:       getEnvInt("MAX_HISTORY_SIZE", 200),
		MaxTagsPerNode:       getEnvInt("MAX_TAGS_PER_NODE", 10),
		MaxBranches:          getEnvInt("MAX_BRANCHES", 50),
		MaxDescriptionLength: getEnvInt("MAX_DESCRIPTION_LENGTH", 500),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "vyb-history"),

		EnableCORS: getEnvBool("ENABLE_CORS", true),
		EnableAuth: getEnvBool("ENABLE_AUTH", false),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.EnableAuth && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when auth is enabled in production")
		}
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required")
		}
	}
	if c.MaxTagsPerNode < 1 {
		return fmt.Errorf("MAX_TAGS_PER_NODE must be at least 1")
	}
	if c.MaxBranches < 1 {
		return fmt.Errorf("MAX_BRANCHES must be at least 1")
	}
	if c.MaxDescriptionLength < 1 {
		return fmt.Errorf("MAX_DESCRIPTION_LENGTH must be at least 1")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
