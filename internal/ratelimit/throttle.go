// Package ratelimit spaces outbound search-provider calls to a
// requests-per-minute budget shared by every screening in the process.
package ratelimit

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Throttle blocks until the next provider call may be made.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Limiter enforces a minimum interval between calls. The zero burst of one
// means a call is never issued sooner than Interval after the previous one.
// Limiter is safe for concurrent use.
type Limiter struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// New returns a Limiter for rpm requests per minute. rpm <= 0 disables
// throttling.
func New(rpm int) *Limiter {
	if rpm <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	interval := time.Minute / time.Duration(rpm)
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait sleeps for whatever remains of the minimum interval since the last
// stamped call, then stamps the new call time. When ctx ends, or its
// deadline falls before the next slot, the error wraps the context error.
func (l *Limiter) Wait(ctx context.Context) error {
	err := l.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return eris.Wrap(ctxErr, "ratelimit: wait")
	}
	if _, ok := ctx.Deadline(); ok {
		// The limiter refuses early when the slot lies past the deadline.
		return eris.Wrap(context.DeadlineExceeded, "ratelimit: wait")
	}
	return eris.Wrap(err, "ratelimit: wait")
}

// Interval is the minimum spacing between calls; zero when disabled.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Nop never blocks.
type Nop struct{}

// Wait returns immediately unless ctx is already done.
func (Nop) Wait(ctx context.Context) error {
	return ctx.Err()
}
