package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/swipeit/chatrelay/internal/models"
)

// Config holds all configuration for the relay.
type Config struct {
	Port string
	Env  string

	BackendURL   string
	BackendToken string
	RedisURL     string

	// Current user identity; resolution is relative to this user.
	UserID      string
	UserName    string
	UserRole    models.Role
	UserCompany string

	PollInterval time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		BackendURL:   os.Getenv("BACKEND_URL"),
		BackendToken: os.Getenv("BACKEND_TOKEN"),
		RedisURL:     os.Getenv("REDIS_URL"),
		UserID:       os.Getenv("USER_ID"),
		UserName:     os.Getenv("USER_NAME"),
		UserRole:     models.Role(getEnv("USER_ROLE", "candidate")),
		UserCompany:  os.Getenv("USER_COMPANY"),
		PollInterval: getDuration("POLL_INTERVAL", 3*time.Second),
	}

	// In production, require a backend and a user identity
	if cfg.Env == "production" {
		if cfg.BackendURL == "" {
			panic("BACKEND_URL is required in production")
		}
		if cfg.UserID == "" {
			panic("USER_ID is required in production")
		}
	}

	return cfg
}

// User builds the current-user identity the resolvers compare against.
func (c *Config) User() models.User {
	return models.User{
		ID:        c.UserID,
		Name:      c.UserName,
		Role:      c.UserRole,
		CompanyID: c.UserCompany,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
