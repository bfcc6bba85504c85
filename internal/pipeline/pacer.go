package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out catalog calls. Wait blocks until the next call is
// allowed or the context is cancelled.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPacer enforces a fixed minimum interval between calls. The first
// call proceeds immediately; each subsequent call waits out the interval.
type FixedPacer struct {
	limiter *rate.Limiter
}

// NewFixedPacer creates a FixedPacer with the given interval between calls.
func NewFixedPacer(interval time.Duration) *FixedPacer {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return &FixedPacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the limiter admits the next call.
func (p *FixedPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NopPacer never waits. Used in tests and for sources that need no pacing.
type NopPacer struct{}

// Wait returns immediately.
func (NopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
