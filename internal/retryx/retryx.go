// Package retryx wraps sethvargo/go-retry into one reusable policy applied
// uniformly to all remote operations: bounded attempts, exponential backoff,
// and retries only for errors explicitly marked transient.
package retryx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds a retried operation. The delay doubles after each attempt,
// starting from BaseDelay.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy matches the remote service contract: up to 3 attempts,
// 500ms base delay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// Do runs fn until it succeeds, fails permanently, exhausts MaxAttempts, or
// ctx is cancelled. Cancellation is checked between attempts; no further
// attempt is made after it. Only errors wrapped with Transient are retried.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}

	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(base))
	return retry.Do(ctx, b, fn)
}

// Transient marks err as retryable under a Policy.
func Transient(err error) error {
	return retry.RetryableError(err)
}
