package httpclient

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
	"github.com/opspanel/opspanel-cli/internal/core/ports"
)

// RequestIDHeader carries the per-call correlation ID added by
// TraceInterceptor.
const RequestIDHeader = "X-Request-ID"

// TraceInterceptor tags every call with a correlation ID and emits a debug
// trace entry. Informational only; callers do not depend on it.
func TraceInterceptor(logger *zap.Logger) ports.RequestInterceptor {
	return func(cfg api.RequestConfig) (api.RequestConfig, error) {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		id := uuid.NewString()
		cfg.Headers[RequestIDHeader] = id
		logger.Debug("api request",
			zap.String("method", cfg.Method),
			zap.String("path", cfg.Path),
			zap.String("request_id", id),
		)
		return cfg, nil
	}
}
