package perplexity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRateLimiterRejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewRateLimiter(0, true)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, KindConfiguration, apiErr.Kind)
}

func TestAcquireRecordsRequests(t *testing.T) {
	limiter, err := NewRateLimiter(3, true)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Acquire(ctx))
	}

	require.Equal(t, 3, limiter.CurrentCount())
	require.False(t, limiter.CanAdmitNow())
}

func TestAcquireBlocksUntilOldestEntryAges(t *testing.T) {
	limiter, err := NewRateLimiter(2, true)
	require.NoError(t, err)
	limiter.window = 150 * time.Millisecond

	ctx := context.Background()
	start := time.Now()
	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))

	// The third admission must wait for the first entry to leave the window.
	require.NoError(t, limiter.Acquire(ctx))
	elapsed := time.Since(start)

	require.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	require.LessOrEqual(t, limiter.CurrentCount(), 2)
}

func TestDisabledLimiterNeverBlocksOrRecords(t *testing.T) {
	limiter, err := NewRateLimiter(1, false)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Acquire(ctx))
	}

	require.Equal(t, 0, limiter.CurrentCount())
	require.True(t, limiter.CanAdmitNow())
}

func TestResetClearsWindow(t *testing.T) {
	limiter, err := NewRateLimiter(2, true)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
	require.False(t, limiter.CanAdmitNow())

	limiter.Reset()
	require.Equal(t, 0, limiter.CurrentCount())
	require.True(t, limiter.CanAdmitNow())
	require.Equal(t, 2, limiter.Capacity())
	require.True(t, limiter.Enabled())
}

func TestSetCapacityTakesEffectMidWindow(t *testing.T) {
	limiter, err := NewRateLimiter(2, true)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
	require.False(t, limiter.CanAdmitNow())

	require.NoError(t, limiter.SetCapacity(5))
	require.True(t, limiter.CanAdmitNow())

	err = limiter.SetCapacity(-1)
	require.Error(t, err)
	require.Equal(t, 5, limiter.Capacity())
}

func TestAcquireCancellationRecordsNothing(t *testing.T) {
	limiter, err := NewRateLimiter(1, true)
	require.NoError(t, err)

	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}

	require.Equal(t, 1, limiter.CurrentCount())
}

func TestConcurrentAcquireRespectsCapacity(t *testing.T) {
	limiter, err := NewRateLimiter(5, true)
	require.NoError(t, err)
	limiter.window = 200 * time.Millisecond

	const callers = 20
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, limiter.Acquire(context.Background()))
			require.LessOrEqual(t, limiter.CurrentCount(), 5)
		}()
	}
	wg.Wait()

	// 20 admissions at 5 per 200ms need at least 3 full window waits.
	require.GreaterOrEqual(t, time.Since(start), 600*time.Millisecond)
}

func TestPrimeSeedsOnlyLiveEntries(t *testing.T) {
	limiter, err := NewRateLimiter(10, true)
	require.NoError(t, err)

	now := time.Now()
	limiter.Prime(
		now.Add(-2*time.Minute),
		now.Add(-30*time.Second),
		now.Add(-5*time.Second),
	)

	require.Equal(t, 2, limiter.CurrentCount())
}
