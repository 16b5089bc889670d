// Package config provides centralized configuration management for pplx.
// Values are layered: built-in defaults, an optional config file
// (~/.config/pplx/config.yaml), a local .env file, then PPLX_*
// environment variables. Legacy PERPLEXITY_* names are still honored.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Krasnovvvvv/perplexity-go/internal/perplexity"
)

// Config represents the complete application configuration for the pplx CLI.
type Config struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Proxy     string        `mapstructure:"proxy"`
	VerifySSL bool          `mapstructure:"verify_ssl"`
	UserAgent string        `mapstructure:"user_agent"`

	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Retry     RetryConfig     `mapstructure:"retry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DefaultsConfig holds per-request defaults applied when flags are unset.
type DefaultsConfig struct {
	Model  string `mapstructure:"model"`
	System string `mapstructure:"system"`
}

// RetryConfig controls the retry policy for transient failures.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// RateLimitConfig controls client-side request admission.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

// StoreConfig contains database configuration for the request journal.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level.
	// Valid values: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// ClientConfig maps the application configuration onto the API client's
// configuration. Validation happens when the client is constructed.
func (c *Config) ClientConfig() perplexity.Config {
	return perplexity.Config{
		APIKey:               c.APIKey,
		BaseURL:              c.BaseURL,
		Timeout:              c.Timeout,
		UserAgent:            c.UserAgent,
		Proxy:                c.Proxy,
		VerifySSL:            c.VerifySSL,
		MaxRetries:           c.Retry.MaxRetries,
		RetryBaseDelay:       c.Retry.BaseDelay,
		RateLimitEnabled:     c.RateLimit.Enabled,
		MaxRequestsPerMinute: c.RateLimit.RequestsPerMinute,
	}
}

// DefaultConfigDir returns the user config directory for pplx, or "" when
// the platform config dir cannot be resolved.
func DefaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "pplx")
}

// DefaultStorePath returns the default location of the request journal.
func DefaultStorePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return "./pplx.db"
	}
	return filepath.Join(dir, "pplx.db")
}
