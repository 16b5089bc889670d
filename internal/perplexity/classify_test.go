package perplexity

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyResponseStatusMapping(t *testing.T) {
	cases := []struct {
		status    int
		kind      ErrorKind
		retryable bool
	}{
		{400, KindValidation, false},
		{401, KindAuthentication, false},
		{403, KindAuthentication, false},
		{429, KindRateLimited, false},
		{500, KindServer, true},
		{502, KindServer, true},
		{503, KindServer, true},
		{504, KindServer, true},
		{404, KindNetwork, true},
		{418, KindNetwork, true},
	}

	for _, tc := range cases {
		resp := &TransportResponse{StatusCode: tc.status, Body: []byte(`{}`)}
		apiErr := classifyResponse(resp)
		require.NotNil(t, apiErr, "status %d", tc.status)
		require.Equal(t, tc.kind, apiErr.Kind, "status %d", tc.status)
		require.Equal(t, tc.retryable, apiErr.Retryable(), "status %d", tc.status)
		require.Equal(t, tc.status, apiErr.StatusCode)

		// The classifier is pure: a second pass yields the same outcome.
		again := classifyResponse(resp)
		require.Equal(t, apiErr.Kind, again.Kind)
		require.Equal(t, apiErr.Message, again.Message)
	}
}

func TestClassifyResponseSuccessRange(t *testing.T) {
	for _, status := range []int{200, 201, 204, 299} {
		require.Nil(t, classifyResponse(&TransportResponse{StatusCode: status}))
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error string", `{"error":"invalid model"}`, "invalid model"},
		{"error object", `{"error":{"message":"bad prompt"}}`, "bad prompt"},
		{"short raw body", `upstream exploded`, "upstream exploded"},
		{"long raw body", strings.Repeat("x", 400), "HTTP 500"},
		{"empty body", ``, "HTTP 500"},
		{"malformed error field", `{"error":42}`, `{"error":42}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, errorMessage(500, []byte(tc.body)))
		})
	}
}

func TestRetryAfterHint(t *testing.T) {
	seconds := retryAfterHint([]byte(`{"error":"slow down","retry_after":5}`), nil)
	require.NotNil(t, seconds)
	require.Equal(t, 5, *seconds)

	header := http.Header{}
	header.Set("Retry-After", "7")
	seconds = retryAfterHint([]byte(`{}`), header)
	require.NotNil(t, seconds)
	require.Equal(t, 7, *seconds)

	// Body hint wins over the header.
	seconds = retryAfterHint([]byte(`{"retry_after":3}`), header)
	require.NotNil(t, seconds)
	require.Equal(t, 3, *seconds)

	require.Nil(t, retryAfterHint([]byte(`{}`), nil))
	require.Nil(t, retryAfterHint([]byte(`not json`), http.Header{}))
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	apiErr := classifyTransportError(context.DeadlineExceeded)
	require.Equal(t, KindTimeout, apiErr.Kind)
	require.True(t, apiErr.Retryable())

	apiErr = classifyTransportError(timeoutError{})
	require.Equal(t, KindTimeout, apiErr.Kind)

	apiErr = classifyTransportError(errors.New("connection refused"))
	require.Equal(t, KindNetwork, apiErr.Kind)
	require.True(t, apiErr.Retryable())
	require.Zero(t, apiErr.StatusCode)
}
