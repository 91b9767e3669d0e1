// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	SessionMaxIdle time.Duration // idle age after which sessions are reaped
	ReapInterval   time.Duration // how often the reaper sweeps
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/sandbox.db"),
		SessionMaxIdle: getEnvDuration("SESSION_MAX_IDLE", 24*time.Hour),
		ReapInterval:   getEnvDuration("REAP_INTERVAL", time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionMaxIdle <= 0 {
		return fmt.Errorf("SESSION_MAX_IDLE must be > 0")
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("REAP_INTERVAL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
