package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type RetryOptions struct {
	MaxRetries int
	Backoff    time.Duration
}

func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries: 3,
		Backoff:    20 * time.Millisecond,
	}
}

// WithRetry runs fn until it succeeds, fails permanently or runs out of
// attempts. fn is expected to run its own transaction.
func WithRetry(ctx context.Context, opts RetryOptions, fn func() error) error {
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultRetryOptions().Backoff
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= opts.MaxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", opts.MaxRetries, err)
		}

		jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}
