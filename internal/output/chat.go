package output

import (
	"fmt"
	"strings"

	"github.com/Krasnovvvvv/perplexity-go/internal/perplexity"
)

// FormatChat renders a chat completion. The table format prints the answer
// text followed by numbered citations; JSON dumps the full response.
func FormatChat(format Format, resp *perplexity.ChatResponse) (string, error) {
	if resp == nil {
		return "", nil
	}

	if format == FormatJSON {
		return marshalIndent(resp)
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(resp.Content(), "\n"))

	if len(resp.Citations) > 0 {
		b.WriteString("\n\nCitations:\n")
		for i, citation := range resp.Citations {
			fmt.Fprintf(&b, "  [%d] %s\n", i+1, citation)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
