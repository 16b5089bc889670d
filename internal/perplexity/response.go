package perplexity

import "encoding/json"

// ChatResponse is a decoded chat completions reply.
type ChatResponse struct {
	ID            string         `json:"id"`
	Model         string         `json:"model"`
	Created       int64          `json:"created"`
	Choices       []Choice       `json:"choices"`
	Citations     []string       `json:"citations,omitempty"`
	SearchResults []SearchResult `json:"search_results,omitempty"`
	Usage         Usage          `json:"usage"`
}

// Choice is one completion candidate; the API returns the answer in the
// first choice.
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// SearchResult is one web source consulted for the answer.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet,omitempty"`
	Date        string `json:"date,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// Usage reports token consumption, and cost when the API includes it.
type Usage struct {
	PromptTokens      int    `json:"prompt_tokens"`
	CompletionTokens  int    `json:"completion_tokens"`
	TotalTokens       int    `json:"total_tokens"`
	SearchContextSize string `json:"search_context_size,omitempty"`
	Cost              *Cost  `json:"cost,omitempty"`
}

// Cost is the per-request cost breakdown in USD.
type Cost struct {
	InputTokensCost  float64 `json:"input_tokens_cost"`
	OutputTokensCost float64 `json:"output_tokens_cost"`
	RequestCost      float64 `json:"request_cost"`
	TotalCost        float64 `json:"total_cost"`
}

// Content returns the answer text from the first choice, or "" when the
// response carried no choices.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// FinishReason returns the first choice's finish reason, or "".
func (r *ChatResponse) FinishReason() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].FinishReason
}

// decodeChatResponse parses a 2xx body. A malformed success body is a
// json_parse error, reported to the caller and never retried.
func decodeChatResponse(body []byte) (*ChatResponse, error) {
	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, jsonParseError(err)
	}
	return &resp, nil
}
