package perplexity

import "encoding/json"

// Message roles accepted by the chat completions endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage returns a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ChatRequest describes one call to the chat completions endpoint.
// Optional sampling parameters are pointers so unset fields are omitted
// from the wire payload. ReturnCitations defaults to true and
// ReturnImages to false when left nil.
type ChatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      *float64  `json:"temperature,omitempty"`
	MaxTokens        *int      `json:"max_tokens,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	TopK             *int      `json:"top_k,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`

	ReturnCitations *bool `json:"return_citations,omitempty"`
	ReturnImages    *bool `json:"return_images,omitempty"`

	SearchDomainFilter  []string `json:"search_domain_filter,omitempty"`
	SearchRecencyFilter string   `json:"search_recency_filter,omitempty"`
}

// Validate checks required fields and parameter ranges. Violations are
// validation errors and never reach the transport.
func (r *ChatRequest) Validate() error {
	if r == nil {
		return validationError("request is required")
	}
	if r.Model == "" {
		return validationError("model must be specified")
	}
	if len(r.Messages) == 0 {
		return validationError("at least one message is required")
	}
	if r.Temperature != nil && (*r.Temperature < 0.0 || *r.Temperature > 2.0) {
		return validationError("temperature must be between 0.0 and 2.0")
	}
	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return validationError("max_tokens must be positive")
	}
	if r.TopP != nil && (*r.TopP < 0.0 || *r.TopP > 1.0) {
		return validationError("top_p must be between 0.0 and 1.0")
	}
	if r.TopK != nil && *r.TopK < 0 {
		return validationError("top_k must be non-negative")
	}
	if r.PresencePenalty != nil && (*r.PresencePenalty < -2.0 || *r.PresencePenalty > 2.0) {
		return validationError("presence_penalty must be between -2.0 and 2.0")
	}
	if r.FrequencyPenalty != nil && (*r.FrequencyPenalty < -2.0 || *r.FrequencyPenalty > 2.0) {
		return validationError("frequency_penalty must be between -2.0 and 2.0")
	}
	return nil
}

// encode validates the request, applies citation/image defaults, and
// serializes the wire payload.
func (r *ChatRequest) encode() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	payload := *r
	if payload.ReturnCitations == nil {
		enabled := true
		payload.ReturnCitations = &enabled
	}
	if payload.ReturnImages == nil {
		disabled := false
		payload.ReturnImages = &disabled
	}

	data, err := json.Marshal(&payload)
	if err != nil {
		return nil, validationError("encode request: %v", err)
	}
	return data, nil
}
