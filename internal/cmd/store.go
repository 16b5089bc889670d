package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Krasnovvvvv/perplexity-go/internal/observability"
	"github.com/Krasnovvvvv/perplexity-go/internal/perplexity"
	"github.com/Krasnovvvvv/perplexity-go/internal/store"
)

// openStore opens and migrates the request journal.
func openStore(ctx context.Context) (*store.Store, error) {
	db, err := store.Open(ctx, appConfig.Store)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// primeLimiter seeds the limiter with journal entries from the last minute
// so consecutive CLI invocations share one admission window.
func primeLimiter(ctx context.Context, db *store.Store, limiter *perplexity.RateLimiter) {
	stamps, err := db.RecentTimestamps(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		observability.CLILogger.Warn("failed to read recent requests", zap.Error(err))
		return
	}
	limiter.Prime(stamps...)
}
