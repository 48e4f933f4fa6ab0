// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// ContentDir is the root directory holding post files and categories.json.
	ContentDir string

	// Auth settings
	JWTSecret         string
	AdminPasswordHash string // bcrypt hash; takes precedence over AdminPassword
	AdminPassword     string // plaintext fallback, hashed at startup
	AdminTOTPSecret   string // optional second factor; empty disables TOTP

	// Site identity, used for the RSS feed and sitemap.
	SiteURL         string
	SiteTitle       string
	SiteDescription string

	// Redis (optional rendered-page cache; empty addr disables caching)
	RedisAddr     string
	RedisPassword string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		ContentDir: envOrDefault("CONTENT_DIR", "content"),

		JWTSecret:         envOrDefault("JWT_SECRET", "dev-only-jwt-secret"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminPassword:     envOrDefault("ADMIN_PASSWORD", "admin123"),
		AdminTOTPSecret:   os.Getenv("ADMIN_TOTP_SECRET"),

		SiteURL:         envOrDefault("SITE_URL", "http://localhost:8080"),
		SiteTitle:       envOrDefault("SITE_TITLE", "inkpress"),
		SiteDescription: envOrDefault("SITE_DESCRIPTION", "A personal blog"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.Env == "production" {
		if cfg.JWTSecret == "dev-only-jwt-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		if cfg.AdminPasswordHash == "" && cfg.AdminPassword == "admin123" {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
		}
	}

	abs, err := filepath.Abs(cfg.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}
	cfg.ContentDir = abs

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
