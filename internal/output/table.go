package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Krasnovvvvv/perplexity-go/internal/store"
)

// RateLimitStatus is a point-in-time snapshot of the request limiter.
type RateLimitStatus struct {
	Enabled  bool `json:"enabled"`
	Capacity int  `json:"capacity"`
	Used     int  `json:"used"`
	Free     int  `json:"free"`
}

// FormatRateLimit renders the limiter snapshot.
func FormatRateLimit(format Format, status RateLimitStatus) (string, error) {
	if format == FormatJSON {
		return marshalIndent(status)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Enabled", "Capacity", "Used", "Free"})
	t.AppendRow(table.Row{status.Enabled, status.Capacity, status.Used, status.Free})
	return t.Render(), nil
}

// FormatEntries renders journal entries, newest first.
func FormatEntries(format Format, entries []store.Entry) (string, error) {
	if format == FormatJSON {
		return marshalIndent(entries)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Model", "Status", "Tokens", "Cost"})

	for _, entry := range entries {
		t.AppendRow(table.Row{
			entry.RequestedAt.Local().Format(time.DateTime),
			entry.Model,
			entry.Status,
			entry.TotalTokens,
			formatCost(entry.Cost),
		})
	}

	return t.Render(), nil
}

// FormatUsage renders per-model usage aggregates with a totals footer.
func FormatUsage(format Format, usage []store.ModelUsage) (string, error) {
	if format == FormatJSON {
		return marshalIndent(usage)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Model", "Requests", "Prompt", "Completion", "Total", "Cost"})

	var requests, totalTokens int
	var totalCost float64
	for _, row := range usage {
		t.AppendRow(table.Row{
			row.Model,
			row.Requests,
			row.PromptTokens,
			row.CompletionTokens,
			row.TotalTokens,
			formatCost(row.TotalCost),
		})
		requests += row.Requests
		totalTokens += row.TotalTokens
		totalCost += row.TotalCost
	}

	if len(usage) > 1 {
		t.AppendFooter(table.Row{"", requests, "", "", totalTokens, formatCost(totalCost)})
	}

	return t.Render(), nil
}

func formatCost(cost float64) string {
	if cost == 0 {
		return "-"
	}
	return fmt.Sprintf("$%.4f", cost)
}
