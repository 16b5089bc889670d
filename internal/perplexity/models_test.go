package perplexity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestChatRequestValidateRanges(t *testing.T) {
	base := func() *ChatRequest {
		return &ChatRequest{Model: "sonar", Messages: []Message{UserMessage("hi")}}
	}

	require.NoError(t, base().Validate())

	cases := []struct {
		name   string
		mutate func(*ChatRequest)
	}{
		{"missing model", func(r *ChatRequest) { r.Model = "" }},
		{"no messages", func(r *ChatRequest) { r.Messages = nil }},
		{"temperature too high", func(r *ChatRequest) { r.Temperature = floatPtr(2.5) }},
		{"temperature negative", func(r *ChatRequest) { r.Temperature = floatPtr(-0.1) }},
		{"max_tokens zero", func(r *ChatRequest) { r.MaxTokens = intPtr(0) }},
		{"top_p out of range", func(r *ChatRequest) { r.TopP = floatPtr(1.5) }},
		{"top_k negative", func(r *ChatRequest) { r.TopK = intPtr(-1) }},
		{"presence_penalty out of range", func(r *ChatRequest) { r.PresencePenalty = floatPtr(3) }},
		{"frequency_penalty out of range", func(r *ChatRequest) { r.FrequencyPenalty = floatPtr(-2.5) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(req)

			err := req.Validate()
			require.Error(t, err)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			require.Equal(t, KindValidation, apiErr.Kind)
			require.False(t, apiErr.Retryable())
		})
	}

	var nilReq *ChatRequest
	require.Error(t, nilReq.Validate())
}

func TestChatRequestEncodeDefaults(t *testing.T) {
	req := &ChatRequest{Model: "sonar", Messages: []Message{UserMessage("hi")}}

	data, err := req.encode()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Equal(t, true, wire["return_citations"])
	require.Equal(t, false, wire["return_images"])

	// Unset sampling parameters stay off the wire.
	require.NotContains(t, wire, "temperature")
	require.NotContains(t, wire, "max_tokens")

	// The caller's request is left untouched.
	require.Nil(t, req.ReturnCitations)
	require.Nil(t, req.ReturnImages)
}

func TestChatRequestEncodeHonorsExplicitFlags(t *testing.T) {
	req := &ChatRequest{
		Model:           "sonar",
		Messages:        []Message{SystemMessage("be brief"), UserMessage("hi")},
		Temperature:     floatPtr(0.2),
		ReturnCitations: boolPtr(false),
		ReturnImages:    boolPtr(true),
	}

	data, err := req.encode()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Equal(t, false, wire["return_citations"])
	require.Equal(t, true, wire["return_images"])
	require.InDelta(t, 0.2, wire["temperature"], 1e-9)
}

func TestMessageConstructors(t *testing.T) {
	require.Equal(t, Message{Role: RoleSystem, Content: "a"}, SystemMessage("a"))
	require.Equal(t, Message{Role: RoleUser, Content: "b"}, UserMessage("b"))
	require.Equal(t, Message{Role: RoleAssistant, Content: "c"}, AssistantMessage("c"))
}

func TestConfigDefaultsAndValidation(t *testing.T) {
	cfg := DefaultConfig("key")
	require.NoError(t, cfg.Validate())
	require.Equal(t, defaultBaseURL, cfg.BaseURL)
	require.True(t, cfg.RateLimitEnabled)
	require.True(t, cfg.VerifySSL)

	filled := Config{APIKey: "key"}.withDefaults()
	require.Equal(t, defaultTimeout, filled.Timeout)
	require.Equal(t, defaultRetryBaseDelay, filled.RetryBaseDelay)
	require.Equal(t, defaultMaxRequestsPerMinute, filled.MaxRequestsPerMinute)
	// MaxRetries zero is a valid choice, not an unset field.
	require.Zero(t, filled.MaxRetries)

	bad := DefaultConfig("key")
	bad.MaxRetries = -1
	require.Error(t, bad.Validate())

	bad = DefaultConfig("")
	require.Error(t, bad.Validate())
}

func TestResponseHelpersOnEmptyChoices(t *testing.T) {
	resp := &ChatResponse{}
	require.Empty(t, resp.Content())
	require.Empty(t, resp.FinishReason())

	var nilResp *ChatResponse
	require.Empty(t, nilResp.Content())
}
