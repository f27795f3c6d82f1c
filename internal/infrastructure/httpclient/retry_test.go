package httpclient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBackoffPolicy_ShouldRetry_Classification(t *testing.T) {
	policy := NewBackoffPolicy()

	tests := []struct {
		name    string
		status  int
		err     error
		attempt int
		want    bool
	}{
		{name: "retryable_500", status: 500, want: true},
		{name: "retryable_502", status: 502, want: true},
		{name: "retryable_503", status: 503, want: true},
		{name: "retryable_504", status: 504, want: true},
		{name: "retryable_408", status: 408, want: true},
		{name: "retryable_429", status: 429, want: true},
		{name: "non_retryable_400", status: 400, want: false},
		{name: "non_retryable_404", status: 404, want: false},
		{name: "non_retryable_422", status: 422, want: false},
		{name: "transport_error_no_status", status: 0, err: errors.New("dial tcp: timeout"), want: true},
		{name: "attempts_exhausted", status: 503, attempt: DefaultMaxRetries, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retry, _ := policy.ShouldRetry(tt.status, tt.err, tt.attempt)
			assert.Equal(t, tt.want, retry)
		})
	}
}

func TestBackoffPolicy_Delay_DoublesPerAttempt(t *testing.T) {
	policy := &BackoffPolicy{
		MaxRetries:        3,
		RetryDelay:        1000 * time.Millisecond,
		RetryableStatuses: DefaultRetryableStatuses(),
	}

	assert.Equal(t, 1000*time.Millisecond, policy.Delay(0))
	assert.Equal(t, 2000*time.Millisecond, policy.Delay(1))
	assert.Equal(t, 4000*time.Millisecond, policy.Delay(2))
}

func TestBackoffPolicy_Delay_ExponentialProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := time.Duration(rapid.Int64Range(1, int64(time.Second)).Draw(t, "base"))
		attempt := rapid.IntRange(0, 20).Draw(t, "attempt")

		policy := &BackoffPolicy{RetryDelay: base}
		want := base * time.Duration(int64(1)<<attempt)
		assert.Equal(t, want, policy.Delay(attempt))

		if attempt > 0 {
			assert.Equal(t, 2*policy.Delay(attempt-1), policy.Delay(attempt))
		}
	})
}
