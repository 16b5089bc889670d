package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// StatusOK marks a journal entry for a request that completed successfully.
// Failed requests record the error kind instead.
const StatusOK = "ok"

// Entry is one journaled API request.
type Entry struct {
	ID               int64
	RequestedAt      time.Time
	Model            string
	Status           string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Cost             float64
}

// ModelUsage aggregates journal entries for one model.
type ModelUsage struct {
	Model            string
	Requests         int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	TotalCost        float64
}

// RecordRequest appends one entry to the journal.
func (s *Store) RecordRequest(ctx context.Context, entry Entry) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	model := strings.TrimSpace(entry.Model)
	if model == "" {
		return errors.New("model is required")
	}
	if entry.RequestedAt.IsZero() {
		entry.RequestedAt = time.Now()
	}
	status := entry.Status
	if status == "" {
		status = StatusOK
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO requests (requested_at, model, status, prompt_tokens, completion_tokens, total_tokens, cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.RequestedAt.UTC().UnixMilli(), model, status,
		entry.PromptTokens, entry.CompletionTokens, entry.TotalTokens, entry.Cost)
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}

	return nil
}

// RecentTimestamps returns the request times at or after since, oldest
// first. The rate limiter is primed with these on startup so restarts do
// not forget the in-flight window.
func (s *Store) RecentTimestamps(ctx context.Context, since time.Time) ([]time.Time, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT requested_at FROM requests
		WHERE requested_at >= ?
		ORDER BY requested_at ASC
	`, since.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("fetch recent requests: %w", err)
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var millis int64
		if err := rows.Scan(&millis); err != nil {
			return nil, fmt.Errorf("scan request time: %w", err)
		}
		stamps = append(stamps, time.UnixMilli(millis).UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch recent requests: %w", err)
	}

	return stamps, nil
}

// List returns the most recent entries, newest first, up to limit.
// A non-positive limit returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	query := `
		SELECT id, requested_at, model, status, prompt_tokens, completion_tokens, total_tokens, cost
		FROM requests
		ORDER BY requested_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var millis int64
		if err := rows.Scan(&entry.ID, &millis, &entry.Model, &entry.Status,
			&entry.PromptTokens, &entry.CompletionTokens, &entry.TotalTokens, &entry.Cost); err != nil {
			return nil, fmt.Errorf("scan request entry: %w", err)
		}
		entry.RequestedAt = time.UnixMilli(millis).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	return entries, nil
}

// UsageSummary aggregates successful requests per model since the given
// time. A zero since aggregates the whole journal.
func (s *Store) UsageSummary(ctx context.Context, since time.Time) ([]ModelUsage, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT model, COUNT(*), SUM(prompt_tokens), SUM(completion_tokens), SUM(total_tokens), SUM(cost)
		FROM requests
		WHERE status = ? AND requested_at >= ?
		GROUP BY model
		ORDER BY model ASC
	`, StatusOK, since.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}
	defer rows.Close()

	var usage []ModelUsage
	for rows.Next() {
		var row ModelUsage
		if err := rows.Scan(&row.Model, &row.Requests,
			&row.PromptTokens, &row.CompletionTokens, &row.TotalTokens, &row.TotalCost); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		usage = append(usage, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}

	return usage, nil
}

// Reset removes all journal entries.
func (s *Store) Reset(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM requests`); err != nil {
		return fmt.Errorf("reset journal: %w", err)
	}

	return nil
}
