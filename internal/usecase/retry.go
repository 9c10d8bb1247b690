package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/gobalance/internal/domain"
)

// RetryConfig bounds the apply retry loop.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}

	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}

	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}

	return c
}

// schedule returns the backoff schedule for a strategy: exponential for lock
// timeouts, linear for version conflicts, fixed for constraint violations.
func (c RetryConfig) schedule(strategy Strategy) backoff.BackOff {
	switch strategy {
	case StrategyOptimistic:
		return &linearBackOff{base: c.BaseDelay, max: c.MaxDelay}
	case StrategyToken:
		return backoff.NewConstantBackOff(c.BaseDelay)
	default:
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.BaseDelay
		b.MaxInterval = c.MaxDelay
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxElapsedTime = 0
		// Reset recomputes the current interval from InitialInterval; the
		// constructor seeded it with the library default.
		b.Reset()

		return b
	}
}

// linearBackOff grows the delay by base on every attempt, capped at max.
type linearBackOff struct {
	base    time.Duration
	max     time.Duration
	attempt int64
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++

	d := time.Duration(l.attempt) * l.base
	if d > l.max {
		return l.max
	}

	return d
}

func (l *linearBackOff) Reset() {
	l.attempt = 0
}

// isRetryable reports whether the coordinator may re-attempt after err.
// Insufficient funds, invalid input and missing balances are never retried.
func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrLockTimeout) ||
		errors.Is(err, domain.ErrVersionConflict) ||
		errors.Is(err, domain.ErrConstraintViolation)
}

// RetriesExhaustedError reports that every attempt failed with a retryable
// error. The last cause is attached.
type RetriesExhaustedError struct {
	Strategy Strategy
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s strategy exhausted after %d attempts: %v", e.Strategy, e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
