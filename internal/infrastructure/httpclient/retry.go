package httpclient

import (
	"time"

	"github.com/opspanel/opspanel-cli/internal/core/ports"
)

// Default retry behavior for the OpsPanel backend.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
	DefaultTimeout    = 30 * time.Second
)

// DefaultRetryableStatuses are the transient statuses worth another attempt.
func DefaultRetryableStatuses() map[int]bool {
	return map[int]bool{
		408: true,
		429: true,
		500: true,
		502: true,
		503: true,
		504: true,
	}
}

// BackoffPolicy retries transient failures with exponential backoff and no
// jitter: attempt n (0-indexed) waits RetryDelay * 2^n before the next try.
// Transport errors without an HTTP status are treated as retryable.
type BackoffPolicy struct {
	MaxRetries        int
	RetryDelay        time.Duration
	RetryableStatuses map[int]bool
}

// NewBackoffPolicy returns the default policy.
func NewBackoffPolicy() *BackoffPolicy {
	return &BackoffPolicy{
		MaxRetries:        DefaultMaxRetries,
		RetryDelay:        DefaultRetryDelay,
		RetryableStatuses: DefaultRetryableStatuses(),
	}
}

// ShouldRetry implements ports.RetryPolicy.
func (p *BackoffPolicy) ShouldRetry(status int, err error, attempt int) (bool, time.Duration) {
	if attempt >= p.MaxRetries {
		return false, 0
	}
	if err != nil && status == 0 {
		// Timeout, DNS failure, connection reset: no status to classify,
		// so treat as transient.
		return true, p.Delay(attempt)
	}
	if p.RetryableStatuses[status] {
		return true, p.Delay(attempt)
	}
	return false, 0
}

// Delay returns the backoff for the given attempt.
func (p *BackoffPolicy) Delay(attempt int) time.Duration {
	return p.RetryDelay * (1 << attempt)
}

var _ ports.RetryPolicy = (*BackoffPolicy)(nil)
