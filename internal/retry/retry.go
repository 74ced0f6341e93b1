// Package retry provides a bounded retry policy for operations against
// external services. One policy type serves every call site; ad hoc
// retry-once loops are not written elsewhere.
package retry

import (
	"context"
	"time"
)

// Policy bounds how often an operation is attempted.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Backoff is the pause between attempts.
	Backoff time.Duration

	// Retryable decides whether an error is worth another attempt.
	// Nil means every error is retryable.
	Retryable func(error) bool
}

// Do runs op until it succeeds, attempts are exhausted, the error is not
// retryable, or the context is done. op receives the zero-based attempt
// number so callers can run recovery work before a retry.
func (p Policy) Do(ctx context.Context, op func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = op(attempt)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}
	return err
}
