// Package cadence paces a prober's cadence ticks using a token-bucket rate
// limiter instead of a bare time.Sleep, so a wait can be interrupted
// promptly by context cancellation.
package cadence

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces successive probes at a configurable interval.
type Limiter struct {
	rl *rate.Limiter
}

// New creates a limiter whose initial token is already spent, so every Wait,
// the first one included, blocks until one interval after the previous tick.
func New(interval time.Duration) *Limiter {
	rl := rate.NewLimiter(rate.Every(interval), 1)
	rl.Allow()
	return &Limiter{rl: rl}
}

// Wait blocks until the next tick is due, re-sampling interval each call (in
// case a shared Config's PingInterval changed). It returns false if ctx was
// canceled first.
func (l *Limiter) Wait(ctx context.Context, interval time.Duration) bool {
	l.rl.SetLimit(rate.Every(interval))
	return l.rl.Wait(ctx) == nil
}
