package perplexity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = server.URL
	cfg.MaxRetries = 0
	cfg.RateLimitEnabled = false

	client, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	return client
}

func sampleChatRequest() *ChatRequest {
	return &ChatRequest{
		Model:    "sonar",
		Messages: []Message{UserMessage("What is the capital of France?")},
	}
}

func TestChatSendsWellFormedRequest(t *testing.T) {
	var captured *http.Request
	var payload map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"id":"1","model":"sonar","choices":[{"message":{"role":"assistant","content":"Paris"},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	})

	resp, err := client.Chat(context.Background(), sampleChatRequest())
	require.NoError(t, err)
	require.Equal(t, "Paris", resp.Content())

	require.Equal(t, http.MethodPost, captured.Method)
	require.Equal(t, "/chat/completions", captured.URL.Path)
	require.Equal(t, "Bearer test-key", captured.Header.Get("Authorization"))
	require.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	require.NotEmpty(t, captured.Header.Get("X-Request-ID"))

	require.Equal(t, "sonar", payload["model"])
	// Citation and image defaults are applied on the wire.
	require.Equal(t, true, payload["return_citations"])
	require.Equal(t, false, payload["return_images"])
}

func TestChatDecodesFullResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "resp-42",
			"model": "sonar-pro",
			"created": 1755950000,
			"choices": [{"message": {"role": "assistant", "content": "Paris."}, "finish_reason": "stop"}],
			"citations": ["https://en.wikipedia.org/wiki/Paris"],
			"search_results": [{"title": "Paris", "url": "https://en.wikipedia.org/wiki/Paris"}],
			"usage": {
				"prompt_tokens": 9,
				"completion_tokens": 3,
				"total_tokens": 12,
				"cost": {"input_tokens_cost": 0.001, "output_tokens_cost": 0.002, "request_cost": 0.005, "total_cost": 0.008}
			}
		}`))
	})

	resp, err := client.Chat(context.Background(), sampleChatRequest())
	require.NoError(t, err)
	require.Equal(t, "resp-42", resp.ID)
	require.Equal(t, "sonar-pro", resp.Model)
	require.Equal(t, "stop", resp.FinishReason())
	require.Len(t, resp.Citations, 1)
	require.Len(t, resp.SearchResults, 1)
	require.Equal(t, 12, resp.Usage.TotalTokens)
	require.NotNil(t, resp.Usage.Cost)
	require.InDelta(t, 0.008, resp.Usage.Cost.TotalCost, 1e-9)
}

func TestChatMapsAuthenticationFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	})

	_, err := client.Chat(context.Background(), sampleChatRequest())
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindAuthentication, apiErr.Kind)
	require.Equal(t, "invalid api key", apiErr.Message)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestChatMalformedSuccessBodyIsParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "truncated`))
	})

	_, err := client.Chat(context.Background(), sampleChatRequest())
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindJSONParse, apiErr.Kind)
}

func TestChatRejectsInvalidRequestLocally(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the transport")
	})

	_, err := client.Chat(context.Background(), &ChatRequest{Model: "sonar"})
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindValidation, apiErr.Kind)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindConfiguration, apiErr.Kind)
}

func TestNewFromEnvironment(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "env-key")
	t.Setenv("PERPLEXITY_BASE_URL", "https://proxy.internal")
	t.Setenv("PERPLEXITY_TIMEOUT", "45")

	client, err := NewFromEnvironment(zap.NewNop())
	require.NoError(t, err)

	cfg := client.Config()
	require.Equal(t, "env-key", cfg.APIKey)
	require.Equal(t, "https://proxy.internal", cfg.BaseURL)
	require.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestNewFromEnvironmentMissingKey(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "")

	_, err := NewFromEnvironment(nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindConfiguration, apiErr.Kind)
}

func TestNewFromEnvironmentBadTimeout(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "env-key")
	t.Setenv("PERPLEXITY_TIMEOUT", "soon")

	_, err := NewFromEnvironment(nil)
	require.Error(t, err)
}
