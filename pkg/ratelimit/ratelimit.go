package ratelimit

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces operations such as crawl status polls and bulk submissions,
// adding optional jitter on top of a token bucket.
// It is safe for concurrent use by multiple goroutines.
type Limiter struct {
	bucket   *rate.Limiter
	jitter   float64 // 0.0 to 1.0
	interval time.Duration
}

// NewLimiter creates a new limiter with the given requests per second (rps)
// and jitter factor. Jitter is clamped to [0.0, 1.0].
// If rps is <= 0, the limiter does not block.
func NewLimiter(rps float64, jitter float64) *Limiter {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}

	if rps <= 0 {
		return &Limiter{jitter: jitter}
	}

	return &Limiter{
		bucket:   rate.NewLimiter(rate.Limit(rps), 1),
		jitter:   jitter,
		interval: time.Duration(float64(time.Second) / rps),
	}
}

// Every creates a limiter that allows one operation per interval.
func Every(interval time.Duration, jitter float64) *Limiter {
	if interval <= 0 {
		return NewLimiter(0, jitter)
	}
	return NewLimiter(float64(time.Second)/float64(interval), jitter)
}

// Wait blocks until it is time to perform the next operation, or until the
// context is canceled. Positive jitter delays the caller by up to
// jitter*interval after the token is granted.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.bucket == nil {
		return nil
	}

	// Reserve rather than bucket.Wait so a deadline surfaces as ctx.Err().
	r := l.bucket.Reserve()
	delay := r.Delay()

	if l.jitter > 0 {
		jitterFactor := (rand.Float64() * 2) - 1.0 // -1.0 to 1.0
		jitterDuration := time.Duration(float64(l.interval) * l.jitter * jitterFactor)

		// Negative jitter cannot run before the bucket allows it, so it
		// collapses to "run now".
		if jitterDuration > 0 {
			delay += jitterDuration
		}
	}

	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Interval reports the nominal spacing between operations (0 when unlimited).
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
