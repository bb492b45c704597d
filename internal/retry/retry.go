// Package retry holds the policies used around remote calls.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy runs op until it succeeds or the policy gives up. onRetry is called
// before every wait with the attempt that just failed (1-based) and its error.
type Policy interface {
	Do(ctx context.Context, op func(ctx context.Context, attempt int) error, onRetry func(attempt int, delay time.Duration, err error)) (attempts int, err error)
	MaxAttempts() int
}

// Fixed retries a fixed number of times with a constant delay and treats
// every error as retryable.
type Fixed struct {
	Attempts int
	Delay    time.Duration

	// Timer drives the waits between attempts. nil uses a real timer per call.
	Timer backoff.Timer
}

func NewFixed(attempts int, delay time.Duration) *Fixed {
	if attempts <= 0 {
		attempts = 1
	}
	return &Fixed{Attempts: attempts, Delay: delay}
}

func (p *Fixed) MaxAttempts() int {
	return p.Attempts
}

// Do returns the number of calls made and, on failure, the error of the last
// call, even when the wait was cut short by ctx.
func (p *Fixed) Do(
	ctx context.Context,
	op func(ctx context.Context, attempt int) error,
	onRetry func(attempt int, delay time.Duration, err error),
) (int, error) {
	retries := max(p.Attempts, 1) - 1
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(retries)),
		ctx,
	)

	attempt := 0
	var lastErr error
	operation := func() error {
		attempt++
		lastErr = op(ctx, attempt)
		return lastErr
	}
	notify := func(err error, delay time.Duration) {
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
	}

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, p.Timer); err != nil {
		if lastErr != nil {
			return attempt, lastErr
		}
		return attempt, err
	}
	return attempt, nil
}
