package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds everything the server needs at startup. Values come from an
// optional YAML file, with environment variables taking precedence so that
// deploys can override a checked-in config.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	// SessionLifetimeSeconds drives both the cookie MaxAge and the stored
	// expires_at. They must never diverge, so this is the only place the
	// lifetime is defined.
	SessionLifetimeSeconds int `yaml:"session_lifetime_seconds"`

	// CookieSecure should only be false for local development over plain HTTP.
	CookieSecure bool `yaml:"cookie_secure"`

	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
	SweepBatchSize       int `yaml:"sweep_batch_size"`
}

const (
	defaultPort                   = "5050"
	defaultSessionLifetimeSeconds = 7 * 24 * 60 * 60
	defaultSweepIntervalSeconds   = 15 * 60
	defaultSweepBatchSize         = 500
)

// Load reads the YAML file at path (skipped if path is empty or the file does
// not exist), applies environment overrides, and fills in defaults.
//
// Environment variables:
//   - PORT
//   - DATABASE_URL
//   - SESSION_LIFETIME_SECONDS
//   - COOKIE_SECURE ("true"/"false")
func Load(path string) (Config, error) {
	cfg := Config{
		Port:                   defaultPort,
		SessionLifetimeSeconds: defaultSessionLifetimeSeconds,
		CookieSecure:           true,
		SweepIntervalSeconds:   defaultSweepIntervalSeconds,
		SweepBatchSize:         defaultSweepBatchSize,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SESSION_LIFETIME_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("SESSION_LIFETIME_SECONDS: %w", err)
		}
		cfg.SessionLifetimeSeconds = n
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = b
	}

	return cfg, cfg.Validate()
}

// Validate checks the invariants the rest of the server assumes.
func (c Config) Validate() error {
	if c.SessionLifetimeSeconds <= 0 {
		return fmt.Errorf("session_lifetime_seconds must be positive, got %d", c.SessionLifetimeSeconds)
	}
	// time.NewTicker panics on a non-positive interval, so a zero here
	// must never reach the sweeper.
	if c.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("sweep_interval_seconds must be positive, got %d", c.SweepIntervalSeconds)
	}
	if c.SweepBatchSize <= 0 {
		return fmt.Errorf("sweep_batch_size must be positive, got %d", c.SweepBatchSize)
	}
	return nil
}

// SessionLifetime returns the lifetime as a duration.
func (c Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeSeconds) * time.Second
}

// SweepInterval returns the sweep cadence as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
