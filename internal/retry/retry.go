// Package retry runs operations with bounded attempts and a growing delay between them.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.trai.ch/zerr"
)

// ErrExhausted is matched by every error returned after the final attempt fails.
var ErrExhausted = zerr.New("retries exhausted")

// Backoff returns the wait after failed attempt k (1-based).
type Backoff func(attempt int) time.Duration

// MaxBackoff is the ceiling of a growing delay.
const MaxBackoff = time.Duration(math.MaxInt64)

// Exponential waits initial * 2^(k-1) after attempt k, saturating at MaxBackoff.
func Exponential(initial time.Duration) Backoff {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		if initial <= 0 {
			return 0
		}
		shift := attempt - 1
		if shift >= 63 || initial > MaxBackoff>>shift {
			return MaxBackoff
		}
		return initial << shift
	}
}

// Linear waits step * k after attempt k.
func Linear(step time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt)
	}
}

// Hooks observe attempts. Either field may be nil.
type Hooks struct {
	BeforeAttempt func(attempt int)
	OnFailure     func(attempt int, err error)
}

// Policy bounds a retried operation. Every error is retryable.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	Hooks       Hooks
}

// ExhaustedError carries the attempt count and the last underlying failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Err}
}

// Do invokes op until it succeeds or MaxAttempts is reached.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Exponential(time.Second)
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if p.Hooks.BeforeAttempt != nil {
			p.Hooks.BeforeAttempt(attempt)
		}
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if p.Hooks.OnFailure != nil {
			p.Hooks.OnFailure(attempt, err)
		}
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, backoff(attempt)); err != nil {
			return zero, zerr.With(zerr.Wrap(err, "retry wait interrupted"), "attempt", attempt)
		}
	}

	return zero, &ExhaustedError{Attempts: attempts, Err: lastErr}
}

// Retry is Do with exponential backoff starting at initialDelay.
func Retry[T any](ctx context.Context, maxAttempts int, initialDelay time.Duration, hooks Hooks, op func(ctx context.Context) (T, error)) (T, error) {
	return Do(ctx, Policy{MaxAttempts: maxAttempts, Backoff: Exponential(initialDelay), Hooks: hooks}, op)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
