package utils

import (
	"context"
	"errors"
	"time"
)

// BackoffMultiplier is applied to the delay after every failed attempt.
const BackoffMultiplier = 2

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. WithRetry returns it unwrapped
// of the marker but otherwise unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// RetryPolicy bounds WithRetry. A zero BaseDelay retries immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// OnRetry, if set, is called before sleeping after failed attempt n (1-based).
	OnRetry func(attempt int, err error, delay time.Duration)
}

// WithRetry runs op until it succeeds, returns a Permanent error, the context
// ends, or MaxAttempts is reached. The delay doubles after every failure.
func WithRetry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return zero, errors.Join(lastErr, ctx.Err())
			case <-t.C:
			}
		} else if ctx.Err() != nil {
			return zero, errors.Join(lastErr, ctx.Err())
		}
		delay *= BackoffMultiplier
	}
	return zero, lastErr
}
