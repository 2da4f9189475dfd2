// Package retry provides bounded exponential backoff with jitter for
// calls against rate-limited upstream services.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy controls how Do retries a failing call.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first
	MaxAttempts int

	// BaseDelay is the unit for exponential backoff: attempt i waits
	// BaseDelay*2^i plus up to one BaseDelay of jitter.
	BaseDelay time.Duration

	// Retryable reports whether an error is worth another attempt.
	// A nil Retryable retries everything.
	Retryable func(error) bool

	// Sleep is swappable for tests. Nil means a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration) error

	// Jitter returns a random fraction in [0,1). Nil uses math/rand.
	Jitter func() float64
}

// DefaultPolicy allows five attempts with one-second base backoff.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Retryable:   retryable,
	}
}

// ExhaustedError wraps the last error after all attempts failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Do runs fn until it succeeds, returns a non-retryable error, the
// context ends, or the attempt budget runs out. Exhaustion returns an
// *ExhaustedError wrapping the final failure.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := p.sleep(ctx, p.delay(i-1)); err != nil {
				return zero, err
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, &ExhaustedError{Attempts: attempts, Last: lastErr}
}

// delay computes the backoff before retrying attempt i.
func (p Policy) delay(i int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	return base*(1<<uint(i)) + time.Duration(jitter()*float64(base))
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
