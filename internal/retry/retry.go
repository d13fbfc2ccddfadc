// Package retry provides the single retry policy shared by every outbound
// network call: bounded attempts, exponential backoff, and a pluggable
// retryable-error predicate.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrUnauthorized marks a 401/403 response. It is configuration-fatal and
// never retried.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound marks a 404 response. Callers treat it as "skip this item".
var ErrNotFound = errors.New("not found")

// HTTPError carries a non-2xx status through the retry predicate.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s", e.StatusCode, e.Status)
}

// Policy parameterizes retry behavior. Backoff grows as base*2^(attempt-1),
// capped at MaxDelay.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Retryable decides whether an error warrants another attempt.
	// Defaults to DefaultRetryable.
	Retryable func(error) bool
}

// Do runs op until it succeeds, exhausts MaxAttempts, or hits a
// non-retryable error. The last error is returned on exhaustion so callers
// can degrade per item instead of aborting the run.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt < attempts {
			if err := sleep(ctx, p.Backoff(attempt)); err != nil {
				return err
			}
		}
	}
	return lastErr
}

// Backoff returns the delay to wait after the given 1-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	delay := base << uint(attempt-1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// DefaultRetryable treats 429, 5xx, and transport-level failures as
// transient. Other HTTP statuses, including 401/403/404, fail immediately.
func DefaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Unrecognized transport failure: retrying is the safer default.
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
