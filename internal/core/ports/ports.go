package ports

import (
	"context"
	"time"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
)

// Requester performs a single HTTP exchange. Retry and interceptor handling
// live above it, so implementations stay a thin transport.
type Requester interface {
	Do(ctx context.Context, endpoint api.Endpoint, req api.RequestConfig) (*api.Response, error)
}

// AuthHeaderProvider builds the base header set for authenticated calls.
// includeContentType is false for bodiless requests (GET, DELETE).
type AuthHeaderProvider interface {
	Headers(includeContentType bool) map[string]string
}

// RetryPolicy classifies a failed attempt. status is 0 for transport errors
// with no HTTP response. The returned delay is how long to wait before the
// next attempt when retry is true.
type RetryPolicy interface {
	ShouldRetry(status int, err error, attempt int) (retry bool, delay time.Duration)
}

// RequestInterceptor may mutate or replace the request config before the
// network call. Interceptors run in registration order.
type RequestInterceptor func(api.RequestConfig) (api.RequestConfig, error)

// ResponseInterceptor observes the raw response after the retry loop settles.
type ResponseInterceptor func(*api.Response) error

// BusySink receives visibility transitions from the loading counter:
// Show fires when the in-flight count leaves zero, Hide when it returns.
type BusySink interface {
	Show()
	Hide()
}

// StreamHandler receives routed frames for one subscribed topic.
type StreamHandler interface {
	HandleUpdate(topic, content string)
	HandleError(topic, message string)
}
