package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetry_SucceedsOnThirdAttempt(t *testing.T) {
	calls := 0
	var delays []time.Duration
	got, err := WithRetry(context.Background(), RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		OnRetry:     func(_ int, _ error, d time.Duration) { delays = append(delays, d) },
	}, func(ctx context.Context, attempt int) (string, error) {
		calls++
		if attempt < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("expected ok after 3 calls, got %q after %d", got, calls)
	}
	if len(delays) != 2 || delays[1] != 2*delays[0] {
		t.Fatalf("expected doubling delays, got %v", delays)
	}
}

func TestWithRetry_StopsAtMaxAttempts(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), RetryPolicy{MaxAttempts: 3}, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errors.New("down")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	bad := errors.New("bad request")
	_, err := WithRetry(context.Background(), RetryPolicy{MaxAttempts: 5}, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, Permanent(bad)
	})
	if !errors.Is(err, bad) {
		t.Fatalf("expected bad request error, got %v", err)
	}
	if IsPermanent(err) {
		t.Fatalf("expected permanent marker to be stripped")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := WithRetry(ctx, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}, func(ctx context.Context, attempt int) (int, error) {
		calls++
		cancel()
		return 0, errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
