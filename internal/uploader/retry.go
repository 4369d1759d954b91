package uploader

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds how often an operation is re-attempted and how long the
// first backoff pause lasts. The delay doubles after every failed attempt.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// One policy per call class: metadata calls (presign, create, complete) get
// two attempts, the byte transfer itself gets three.
var (
	metadataRetry = RetryPolicy{Attempts: 2, BaseDelay: 500 * time.Millisecond}
	transferRetry = RetryPolicy{Attempts: 3, BaseDelay: 500 * time.Millisecond}
)

// retryWithBackoff runs op until it succeeds, the attempt budget is spent, or
// ctx is cancelled. Each request class carries its own budget; failures in
// one phase never consume another phase's attempts. Server rejections below
// the 5xx range are permanent and end the loop on the first attempt.
func retryWithBackoff(ctx context.Context, policy RetryPolicy, op func() error) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	delay := policy.BaseDelay
	var err error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err = op(); err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
