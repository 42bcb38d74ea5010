package remote

import (
	"context"
	"time"
)

// CalculateBackoff returns base * 2^retry, capped at ceiling.
// A negative retry count returns base.
func CalculateBackoff(base, ceiling time.Duration, retry int) time.Duration {
	if retry < 0 {
		return base
	}
	if retry > 30 {
		return ceiling
	}
	backoff := base * time.Duration(1<<retry)
	if ceiling > 0 && backoff > ceiling {
		return ceiling
	}
	return backoff
}

// RetryPolicy bounds how often a failing call is repeated.
type RetryPolicy struct {
	Retries int
	Base    time.Duration
	Max     time.Duration
}

// DefaultRetryPolicy is used for price fetches.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries: 2,
		Base:    100 * time.Millisecond,
		Max:     time.Second,
	}
}

// Capped returns p with Max lowered to limit when limit is smaller.
func (p RetryPolicy) Capped(limit time.Duration) RetryPolicy {
	if limit > 0 && (p.Max <= 0 || limit < p.Max) {
		p.Max = limit
	}
	return p
}

// Retry calls op until it succeeds, returns a non-retriable error, or the
// policy's retries are used up. It returns the last error and the number of
// attempts made.
func Retry(ctx context.Context, p RetryPolicy, op func(context.Context) error) (int, error) {
	attempts := 0
	for {
		attempts++
		err := op(ctx)
		if err == nil || !IsRetriable(err) || attempts > p.Retries {
			return attempts, err
		}

		t := time.NewTimer(CalculateBackoff(p.Base, p.Max, attempts-1))
		select {
		case <-ctx.Done():
			t.Stop()
			return attempts, err
		case <-t.C:
		}
	}
}
