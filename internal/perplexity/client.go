// Package perplexity implements a governed client for the Perplexity AI
// chat completions API: admission is throttled by a sliding-window rate
// limiter, outcomes are mapped to a typed error taxonomy, and transient
// failures are retried with exponential backoff.
package perplexity

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const chatCompletionsPath = "/chat/completions"

// Client is the entry point. A Client is safe for concurrent use; all
// calls share one rate limiter.
type Client struct {
	cfg      Config
	limiter  *RateLimiter
	executor *RequestExecutor
	logger   *zap.Logger
}

// New builds a client from cfg. Unset optional fields take documented
// defaults; invalid values are configuration errors.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter, err := NewRateLimiter(cfg.MaxRequestsPerMinute, cfg.RateLimitEnabled)
	if err != nil {
		return nil, err
	}

	transport, err := newHTTPTransport(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:      cfg,
		limiter:  limiter,
		executor: newRequestExecutor(transport, limiter, cfg.MaxRetries, cfg.RetryBaseDelay, logger),
		logger:   logger,
	}, nil
}

// NewFromEnvironment builds a client from PERPLEXITY_* environment
// variables: PERPLEXITY_API_KEY (required), PERPLEXITY_BASE_URL,
// PERPLEXITY_TIMEOUT (seconds), PERPLEXITY_PROXY.
func NewFromEnvironment(logger *zap.Logger) (*Client, error) {
	apiKey := os.Getenv("PERPLEXITY_API_KEY")
	if apiKey == "" {
		return nil, configError("PERPLEXITY_API_KEY environment variable not set")
	}

	cfg := DefaultConfig(apiKey)
	if baseURL := os.Getenv("PERPLEXITY_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if raw := os.Getenv("PERPLEXITY_TIMEOUT"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, configError("invalid PERPLEXITY_TIMEOUT value %q", raw)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}
	if proxy := os.Getenv("PERPLEXITY_PROXY"); proxy != "" {
		cfg.Proxy = proxy
	}

	return New(cfg, logger)
}

// Chat sends one chat completions request and decodes the reply. It blocks
// for rate-limit admission, retries transient failures per the configured
// policy, and returns either a decoded response or exactly one typed error
// describing the final failure.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	payload, err := req.encode()
	if err != nil {
		return nil, err
	}

	body, err := c.executor.Execute(ctx, http.MethodPost, c.cfg.BaseURL+chatCompletionsPath, c.headers(), payload)
	if err != nil {
		return nil, err
	}

	return decodeChatResponse(body)
}

// RateLimiter exposes the shared limiter for management and monitoring.
func (c *Client) RateLimiter() *RateLimiter {
	return c.limiter
}

// Config returns the effective configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) headers() http.Header {
	header := make(http.Header, 3)
	header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	return header
}
