package ingestion

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay is the pause between consecutive chunks.
const DefaultDelay = 300 * time.Millisecond

// Pacer throttles requests to the embedding service.
// Wait blocks until the next chunk may start or ctx is done.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay waits a constant duration.
type FixedDelay time.Duration

// Wait sleeps for the delay, returning early with ctx.Err() on cancellation.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RateLimit paces with a token bucket.
type RateLimit struct {
	limiter *rate.Limiter
}

// NewRateLimit creates a pacer allowing perSecond chunks per second with the given burst.
func NewRateLimit(perSecond float64, burst int) (*RateLimit, error) {
	if perSecond <= 0 || burst <= 0 {
		return nil, ErrInvalidRateLimit
	}
	return &RateLimit{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}, nil
}

// Wait blocks until the limiter grants a token.
func (r *RateLimit) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
