// Package retry implements the bounded exponential backoff shared by both
// external clients (spec.md §4.2): up to 5 attempts, backoff 0.2 * 2^k
// seconds, retrying on any transport or non-2xx response.
package retry

import (
	"context"
	"math"
	"time"
)

const (
	// MaxAttempts is the retry budget for a single logical call.
	MaxAttempts = 5
	// BaseDelay is the backoff base in spec.md's 0.2 * 2^k formula.
	BaseDelay = 200 * time.Millisecond
)

// Func is a unit of work that may fail transiently.
type Func func(ctx context.Context) error

// Do runs fn, retrying up to MaxAttempts times with exponential backoff
// on error. It returns the last error if every attempt fails, or nil as
// soon as one attempt succeeds. ctx cancellation aborts the wait between
// attempts immediately.
func Do(ctx context.Context, fn Func) error {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := fn(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == MaxAttempts-1 {
			break
		}

		delay := backoff(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

// backoff returns 0.2 * 2^attempt seconds, per spec.md §4.2.
func backoff(attempt int) time.Duration {
	seconds := float64(BaseDelay) / float64(time.Second) * math.Pow(2, float64(attempt))
	return time.Duration(seconds * float64(time.Second))
}
