package perplexity

import (
	"strings"
	"time"
)

const (
	defaultBaseURL              = "https://api.perplexity.ai"
	defaultTimeout              = 30 * time.Second
	defaultMaxRetries           = 3
	defaultRetryBaseDelay       = 100 * time.Millisecond
	defaultMaxRequestsPerMinute = 60
	defaultUserAgent            = "perplexity-go/1.0"
)

// Config holds everything the client needs to talk to the API. The zero
// value is not usable; start from DefaultConfig and set APIKey.
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Proxy     string
	VerifySSL bool

	MaxRetries     int
	RetryBaseDelay time.Duration

	RateLimitEnabled     bool
	MaxRequestsPerMinute int
}

// DefaultConfig returns the documented defaults: 30s timeout, 3 retries,
// 60 requests per minute with rate limiting enabled, SSL verified.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:               apiKey,
		BaseURL:              defaultBaseURL,
		Timeout:              defaultTimeout,
		UserAgent:            defaultUserAgent,
		VerifySSL:            true,
		MaxRetries:           defaultMaxRetries,
		RetryBaseDelay:       defaultRetryBaseDelay,
		RateLimitEnabled:     true,
		MaxRequestsPerMinute: defaultMaxRequestsPerMinute,
	}
}

// Validate rejects unusable configurations before any request is made.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return configError("api key is required")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return configError("base url is required")
	}
	if c.Timeout <= 0 {
		return configError("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return configError("max retries cannot be negative")
	}
	if c.RetryBaseDelay <= 0 {
		return configError("retry base delay must be positive")
	}
	if c.MaxRequestsPerMinute <= 0 {
		return configError("max requests per minute must be positive")
	}
	return nil
}

// withDefaults fills unset optional fields so callers can construct Config
// literally without repeating every default.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = defaultRetryBaseDelay
	}
	if c.MaxRequestsPerMinute == 0 {
		c.MaxRequestsPerMinute = defaultMaxRequestsPerMinute
	}
	return c
}
