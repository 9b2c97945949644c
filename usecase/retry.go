package usecase

import (
	"context"
	"math/rand"
	"time"

	"ytpm/infrastructure/clients/youtube"
	"ytpm/infrastructure/logger"
)

// RetryPolicy bounds the transient-failure retry loop around one remote call.
type RetryPolicy struct {
	Retries   int           // additional attempts after the first
	BaseDelay time.Duration // first backoff step
	MaxDelay  time.Duration // backoff cap before jitter
}

// DefaultRetryPolicy matches the remote API's tolerance: 5 retries,
// 300ms base, 3s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Retries: 5, BaseDelay: 300 * time.Millisecond, MaxDelay: 3 * time.Second}
}

// backoffDelay is exponential with ±30% jitter so concurrent batches do not
// retry in lockstep.
func backoffDelay(policy RetryPolicy, attempt int) time.Duration {
	delay := policy.BaseDelay << uint(attempt)
	if delay > policy.MaxDelay || delay <= 0 {
		delay = policy.MaxDelay
	}
	jitter := 0.7 + rand.Float64()*0.6
	return time.Duration(float64(delay) * jitter)
}

// RetryTransient runs call, retrying only failures classified transient by
// youtube.IsTransient. Permanent failures surface immediately; after the
// attempt budget is exhausted the last error is returned.
func RetryTransient[T any](ctx context.Context, policy RetryPolicy, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= policy.Retries; attempt++ {
		result, err := call()
		if err == nil {
			return result, nil
		}
		lastErr = err
		parsed := youtube.ParseAPIError(err)
		if !youtube.IsTransient(parsed) || attempt == policy.Retries {
			return zero, err
		}
		logger.GetLogger().WithField("attempt", attempt+1).
			WithField("code", parsed.Code).
			Warn("Transient remote failure, backing off")
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoffDelay(policy, attempt)):
		}
	}
	return zero, lastErr
}

// retryTransientErr adapts RetryTransient for calls without a result value.
func retryTransientErr(ctx context.Context, policy RetryPolicy, call func() error) error {
	_, err := RetryTransient(ctx, policy, func() (struct{}, error) {
		return struct{}{}, call()
	})
	return err
}
