package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsAfterRateLimits(t *testing.T) {
	attempts := 0
	policy := Policy{MaxAttempts: 4, BaseDelay: time.Millisecond}

	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts <= 3 {
			return &HTTPError{StatusCode: 429, Status: "Too Many Requests"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
}

func TestDoForbiddenIsNotRetried(t *testing.T) {
	attempts := 0
	policy := Policy{MaxAttempts: 4, BaseDelay: time.Millisecond}

	err := policy.Do(context.Background(), func() error {
		attempts++
		return &HTTPError{StatusCode: 403, Status: "Forbidden"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDoExhaustionReturnsLastError(t *testing.T) {
	attempts := 0
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	sentinel := &HTTPError{StatusCode: 503, Status: "Service Unavailable"}

	err := policy.Do(context.Background(), func() error {
		attempts++
		return sentinel
	})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Errorf("err = %v, want last 503 failure", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	policy := Policy{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := policy.Backoff(i + 1); got != w {
			t.Errorf("Backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestDefaultRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"503", &HTTPError{StatusCode: 503}, true},
		{"400", &HTTPError{StatusCode: 400}, false},
		{"unauthorized", ErrUnauthorized, false},
		{"not found", ErrNotFound, false},
		{"deadline", context.DeadlineExceeded, true},
		{"generic transport", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryable(tt.err); got != tt.want {
				t.Errorf("DefaultRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := Policy{MaxAttempts: 5, BaseDelay: time.Minute}
	err := policy.Do(ctx, func() error {
		return &HTTPError{StatusCode: 500}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
