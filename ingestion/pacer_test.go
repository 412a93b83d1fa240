package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelay_Wait(t *testing.T) {
	start := time.Now()
	require.NoError(t, FixedDelay(15*time.Millisecond).Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestFixedDelay_Zero(t *testing.T) {
	assert.NoError(t, FixedDelay(0).Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, FixedDelay(0).Wait(ctx), context.Canceled)
}

func TestFixedDelay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := FixedDelay(time.Hour).Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewRateLimit(t *testing.T) {
	_, err := NewRateLimit(0, 1)
	assert.ErrorIs(t, err, ErrInvalidRateLimit)

	_, err = NewRateLimit(1, 0)
	assert.ErrorIs(t, err, ErrInvalidRateLimit)

	limiter, err := NewRateLimit(50, 1)
	require.NoError(t, err)

	// First token is available immediately; the next two take ~20ms each.
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRateLimit_Cancelled(t *testing.T) {
	limiter, err := NewRateLimit(0.001, 1)
	require.NoError(t, err)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Wait(ctx))
}
