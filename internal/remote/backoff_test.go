package remote

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	ceiling := time.Second

	tests := []struct {
		retry int
		want  time.Duration
	}{
		{-1, base},
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{40, time.Second},
	}
	for _, tt := range tests {
		if got := CalculateBackoff(base, ceiling, tt.retry); got != tt.want {
			t.Errorf("CalculateBackoff(%d) = %s, want %s", tt.retry, got, tt.want)
		}
	}
}

func TestRetryPolicyCapped(t *testing.T) {
	p := DefaultRetryPolicy().Capped(250 * time.Millisecond)
	if p.Max != 250*time.Millisecond {
		t.Errorf("Max = %s, want 250ms", p.Max)
	}
	p = DefaultRetryPolicy().Capped(time.Hour)
	if p.Max != time.Second {
		t.Errorf("Max raised to %s", p.Max)
	}
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{Retries: 2, Base: time.Millisecond, Max: 2 * time.Millisecond}
}

func TestRetryRecovers(t *testing.T) {
	calls := 0
	attempts, err := Retry(context.Background(), fastPolicy(), func(context.Context) error {
		calls++
		if calls < 3 {
			return NewNetworkError("next_price", errors.New("connection reset"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryGivesUp(t *testing.T) {
	attempts, err := Retry(context.Background(), fastPolicy(), func(context.Context) error {
		return &StatusError{Op: "next_price", Code: 503, Message: "busy"}
	})
	if !IsRetriable(err) {
		t.Fatalf("expected the last retriable error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryStopsOnFatalError(t *testing.T) {
	attempts, err := Retry(context.Background(), fastPolicy(), func(context.Context) error {
		return &StatusError{Op: "next_price", Code: 409, Message: "game over"}
	})
	if err == nil || attempts != 1 {
		t.Fatalf("attempts=%d err=%v, want a single failed attempt", attempts, err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{Retries: 5, Base: time.Hour, Max: time.Hour}

	attempts, err := Retry(ctx, p, func(context.Context) error {
		cancel()
		return NewNetworkError("next_price", errors.New("timeout"))
	})
	if err == nil || attempts != 1 {
		t.Fatalf("attempts=%d err=%v", attempts, err)
	}
}

func TestErrorClassification(t *testing.T) {
	notFound := &StatusError{Op: "game_state", Code: 404, Message: "no such game"}
	if !errors.Is(notFound, ErrNotFound) {
		t.Error("404 should unwrap to ErrNotFound")
	}
	if IsRetriable(notFound) {
		t.Error("404 must not be retriable")
	}

	base := errors.New("refused")
	ne := NewFatalNetworkError("dial", base)
	if IsRetriable(ne) || !errors.Is(ne, base) {
		t.Error("fatal network error classification is wrong")
	}
	if !IsRetriable(NewNetworkError("dial", base)) {
		t.Error("network error should be retriable")
	}
	if IsRetriable(errors.New("plain")) {
		t.Error("plain errors are not retriable")
	}
}
