package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxRawErrorBody bounds how much of an unparseable error body is used as
// the error message before degrading to a generic "HTTP <code>" string.
const maxRawErrorBody = 200

// classifyResponse maps an HTTP exchange to a typed error, or nil for 2xx.
// It is a pure function of the response: same input, same outcome.
func classifyResponse(resp *TransportResponse) *APIError {
	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return nil
	}

	message := errorMessage(status, resp.Body)

	switch status {
	case http.StatusBadRequest:
		return &APIError{Kind: KindValidation, Message: message, StatusCode: status}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &APIError{Kind: KindAuthentication, Message: message, StatusCode: status}
	case http.StatusTooManyRequests:
		return &APIError{
			Kind:       KindRateLimited,
			Message:    message,
			StatusCode: status,
			RetryAfter: retryAfterHint(resp.Body, resp.Header),
		}
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &APIError{Kind: KindServer, Message: message, StatusCode: status}
	default:
		return &APIError{Kind: KindNetwork, Message: message, StatusCode: status}
	}
}

// classifyTransportError maps a transport failure (no HTTP status obtained)
// to a typed error. Caller cancellation is handled by the executor before
// this is reached.
func classifyTransportError(err error) *APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &APIError{Kind: KindNetwork, Message: err.Error(), Err: err}
}

// errorBody is the provider's error envelope: "error" is either a plain
// string or an object with a "message" field.
type errorBody struct {
	Error      json.RawMessage `json:"error"`
	RetryAfter *float64        `json:"retry_after"`
}

type errorObject struct {
	Message string `json:"message"`
}

// errorMessage extracts a human-readable message from an error response
// body. It never fails: malformed bodies degrade to the raw text when
// short, else to a generic "HTTP <code>" message.
func errorMessage(status int, body []byte) string {
	fallback := "HTTP " + strconv.Itoa(status)

	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var asString string
		if err := json.Unmarshal(envelope.Error, &asString); err == nil && asString != "" {
			return asString
		}
		var asObject errorObject
		if err := json.Unmarshal(envelope.Error, &asObject); err == nil && asObject.Message != "" {
			return asObject.Message
		}
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" && len(trimmed) < maxRawErrorBody {
		return trimmed
	}
	return fallback
}

// retryAfterHint reads the retry-after hint for a 429: the JSON body's
// retry_after field wins, then the Retry-After header (seconds or
// HTTP-date). Returns nil when neither is present or parseable.
func retryAfterHint(body []byte, header http.Header) *int {
	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.RetryAfter != nil {
		seconds := int(*envelope.RetryAfter)
		return &seconds
	}

	if header != nil {
		if seconds, ok := parseRetryAfterHeader(header.Get("Retry-After")); ok {
			return &seconds
		}
	}
	return nil
}

// parseRetryAfterHeader handles both delta-seconds and HTTP-date forms.
func parseRetryAfterHeader(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs >= 0 {
		return int(math.Ceil(secs)), true
	}

	for _, layout := range []string{time.RFC1123, time.RFC850, time.ANSIC} {
		if t, err := time.Parse(layout, value); err == nil {
			d := time.Until(t)
			if d < 0 {
				return 0, true
			}
			return int(math.Ceil(d.Seconds())), true
		}
	}
	return 0, false
}
