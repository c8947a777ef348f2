package quotes

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy drives the per-attempt retry loop for one quote request.
// Rate-limit responses wait RateLimitDelay scaled by the attempt count;
// transient failures wait BaseDelay doubling each attempt.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	RateLimitDelay time.Duration
}

// DefaultRetryPolicy matches the provider's documented limits: 3 attempts,
// 1s transient base, 60s rate-limit unit.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		RateLimitDelay: time.Minute,
	}
}

// Do runs fn up to MaxAttempts times. Only rate-limit and transient provider
// failures are retried; anything else (including ErrBadQuote) returns
// immediately. The last error is returned after exhaustion.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrUnavailable) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		var wait time.Duration
		if errors.Is(err, ErrRateLimited) {
			wait = p.RateLimitDelay * time.Duration(attempt)
		} else {
			wait = p.BaseDelay << (attempt - 1)
		}
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
	}
	return err
}

// sleep waits for d or until ctx is done; reports whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
