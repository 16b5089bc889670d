package perplexity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed API call. It is the single tag callers
// should switch on; the other APIError fields carry kind-specific context.
type ErrorKind string

const (
	// KindConfiguration marks invalid client or limiter parameters,
	// rejected before any request is sent.
	KindConfiguration ErrorKind = "configuration"
	// KindValidation marks a malformed request (HTTP 400 or local
	// validation). Never retried.
	KindValidation ErrorKind = "validation"
	// KindAuthentication marks HTTP 401/403. Never retried.
	KindAuthentication ErrorKind = "authentication"
	// KindRateLimited marks HTTP 429. Never auto-retried: the caller is
	// expected to honor RetryAfter instead.
	KindRateLimited ErrorKind = "rate_limited"
	// KindServer marks HTTP 500/502/503/504. Retried.
	KindServer ErrorKind = "server"
	// KindNetwork marks any other non-2xx status, or a transport failure
	// with no status at all. Retried.
	KindNetwork ErrorKind = "network"
	// KindTimeout marks a transport-level timeout. Retried.
	KindTimeout ErrorKind = "timeout"
	// KindJSONParse marks a 2xx body that failed to decode. Not retried.
	KindJSONParse ErrorKind = "json_parse"
)

// APIError is the typed error returned for every failed call. StatusCode is
// zero when no HTTP status was obtained, RetryAfter is non-nil only for
// rate-limit responses that carried a hint.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	RetryAfter *int // seconds
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e == nil:
		return "perplexity: unknown error"
	case e.StatusCode > 0:
		return fmt.Sprintf("perplexity: %s error (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("perplexity: %s error: %s", e.Kind, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Retryable reports whether the executor may retry after this error.
// Rate-limit responses are deliberately not retryable here: they are
// surfaced immediately so the caller can honor RetryAfter.
func (e *APIError) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindServer, KindNetwork, KindTimeout:
		return true
	default:
		return false
	}
}

// AsAPIError unwraps err into an *APIError if one is in its chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}

func configError(format string, args ...any) *APIError {
	return &APIError{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) *APIError {
	return &APIError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func jsonParseError(err error) *APIError {
	return &APIError{Kind: KindJSONParse, Message: "failed to parse response", Err: err}
}
