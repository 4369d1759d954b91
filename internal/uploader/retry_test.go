package uploader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryStopsAfterBudget(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		return errors.New("always fails")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrySucceedsMidBudget(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryFirstTryNeedsNoDelay(t *testing.T) {
	start := time.Now()
	err := retryWithBackoff(context.Background(), RetryPolicy{Attempts: 3, BaseDelay: time.Second}, func() error {
		return nil
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRetryBackoffDoubles(t *testing.T) {
	var gaps []time.Duration
	last := time.Now()
	calls := 0
	_ = retryWithBackoff(context.Background(), RetryPolicy{Attempts: 3, BaseDelay: 20 * time.Millisecond}, func() error {
		now := time.Now()
		if calls > 0 {
			gaps = append(gaps, now.Sub(last))
		}
		last = now
		calls++
		return errors.New("fail")
	})

	require.Len(t, gaps, 2)
	assert.GreaterOrEqual(t, gaps[0], 20*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[1], 40*time.Millisecond)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryWithBackoff(ctx, RetryPolicy{Attempts: 3, BaseDelay: time.Hour}, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "cancellation must not burn remaining attempts")
}

func TestRetryStopsOnClientError(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		return &APIError{StatusCode: 400, Code: "INVALID_REQUEST", Message: "bad filetype"}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "a rejected request must not be re-sent")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestRetryTreatsServerErrorsAsTransient(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		return &APIError{StatusCode: 503, Message: "backend unavailable"}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = retryWithBackoff(context.Background(), RetryPolicy{}, func() error {
		calls++
		return nil
	})
	assert.Equal(t, 1, calls)
}
