package perplexity

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestExecutor runs one logical API call to completion: it acquires
// admission from the rate limiter, sends the request, classifies the
// outcome, and retries retryable failures with exponential backoff.
//
// It holds no per-call state and is safe to use from concurrent callers
// sharing one limiter; each Execute owns its own retry counter and timers.
type RequestExecutor struct {
	transport  Transport
	limiter    *RateLimiter
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger

	// sleep is context-aware; tests replace it to observe backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

func newRequestExecutor(transport Transport, limiter *RateLimiter, maxRetries int, baseDelay time.Duration, logger *zap.Logger) *RequestExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestExecutor{
		transport:  transport,
		limiter:    limiter,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Execute performs attempts 0..maxRetries inclusive. Terminal failures
// (validation, authentication, rate-limited) propagate immediately; the
// final retryable failure propagates once the budget is exhausted. Caller
// cancellation aborts the in-flight attempt and returns ctx.Err() without
// consuming a retry slot or sleeping.
func (e *RequestExecutor) Execute(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	requestID := uuid.NewString()
	log := e.logger.With(zap.String("request_id", requestID), zap.String("url", url))

	hdr := cloneHeader(header)
	hdr.Set("X-Request-ID", requestID)

	var lastErr *APIError
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			// Pure exponential backoff: baseDelay * 2^(failed attempt index).
			delay := e.baseDelay << (attempt - 1)
			log.Warn("retrying request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", e.maxRetries+1),
				zap.Duration("backoff", delay),
				zap.String("kind", string(lastErr.Kind)))
			if err := e.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		if err := e.limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		resp, err := e.transport.Send(ctx, method, url, hdr, body)
		if err != nil {
			// Caller cancellation is terminal, not a retryable failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = classifyTransportError(err)
			log.Debug("transport failure", zap.Error(err), zap.String("kind", string(lastErr.Kind)))
			continue
		}

		apiErr := classifyResponse(resp)
		if apiErr == nil {
			if attempt > 0 {
				log.Debug("request succeeded after retries", zap.Int("attempts", attempt+1))
			}
			return resp.Body, nil
		}
		if !apiErr.Retryable() {
			return nil, apiErr
		}

		lastErr = apiErr
		log.Debug("retryable response",
			zap.Int("status", apiErr.StatusCode),
			zap.String("kind", string(apiErr.Kind)))
	}

	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func cloneHeader(header http.Header) http.Header {
	cloned := make(http.Header, len(header)+1)
	for key, values := range header {
		cloned[key] = append([]string(nil), values...)
	}
	return cloned
}
