package httpclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
	"github.com/opspanel/opspanel-cli/internal/core/ports"
	"github.com/opspanel/opspanel-cli/internal/infrastructure/auth"
)

// Config holds the construction-time settings of a Client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Retry     ports.RetryPolicy
}

// Client is the resilient request pipeline against the OpsPanel REST API:
// interceptors, bearer auth, exponential-backoff retry and a reference-counted
// busy indicator. Construct one per backend; there is no package-level state.
type Client struct {
	endpoint  api.Endpoint
	tokens    *auth.TokenStore
	headers   ports.AuthHeaderProvider
	requester ports.Requester
	retry     ports.RetryPolicy
	loading   *LoadingCounter
	logger    *zap.Logger

	reqInterceptors  []ports.RequestInterceptor
	respInterceptors []ports.ResponseInterceptor

	// sleep is swapped out by tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithRequester replaces the transport. Used by tests and by callers that
// need custom TLS or proxy handling.
func WithRequester(r ports.Requester) Option {
	return func(c *Client) { c.requester = r }
}

// WithBusySink binds the loading counter to a busy indicator.
func WithBusySink(sink ports.BusySink) Option {
	return func(c *Client) { c.loading = NewLoadingCounter(sink) }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New constructs a Client. Zero-value config fields fall back to defaults.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry == nil {
		cfg.Retry = NewBackoffPolicy()
	}

	tokens := auth.NewTokenStore()
	c := &Client{
		endpoint: api.Endpoint{BaseURL: cfg.BaseURL, UserAgent: cfg.UserAgent},
		tokens:   tokens,
		headers:  auth.NewHeaderProvider(tokens),
		retry:    cfg.Retry,
		loading:  NewLoadingCounter(nil),
		logger:   zap.NewNop(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.requester == nil {
		c.requester = NewHTTPRequester(cfg.Timeout)
	}
	return c
}

// SetTokens stores the bearer pair used by every subsequent call. Idempotent;
// call again to replace the credentials wholesale.
func (c *Client) SetTokens(pair api.TokenPair) {
	c.tokens.Set(pair)
}

// Tokens returns the current token pair.
func (c *Client) Tokens() api.TokenPair {
	return c.tokens.Get()
}

// UseRequest appends a request interceptor. Interceptors run in registration
// order and may mutate or replace the config.
func (c *Client) UseRequest(ic ports.RequestInterceptor) {
	c.reqInterceptors = append(c.reqInterceptors, ic)
}

// UseResponse appends a response interceptor.
func (c *Client) UseResponse(ic ports.ResponseInterceptor) {
	c.respInterceptors = append(c.respInterceptors, ic)
}

// Loading exposes the in-flight counter, mainly for tests and status display.
func (c *Client) Loading() *LoadingCounter {
	return c.loading
}

// Do runs the full pipeline for one call: request interceptors, busy
// refcount, the retried network exchange, then response interceptors. The
// counter is released on every exit path. The raw response comes back for
// the caller to interpret; non-2xx statuses are not an error here.
func (c *Client) Do(ctx context.Context, cfg api.RequestConfig) (*api.Response, error) {
	var err error
	for _, ic := range c.reqInterceptors {
		if cfg, err = ic(cfg); err != nil {
			return nil, fmt.Errorf("request interceptor: %w", err)
		}
	}

	c.loading.Acquire()
	defer c.loading.Release()

	resp, err := c.doWithRetry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	for _, ic := range c.respInterceptors {
		if err := ic(resp); err != nil {
			return nil, fmt.Errorf("response interceptor: %w", err)
		}
	}
	return resp, nil
}

func (c *Client) doWithRetry(ctx context.Context, cfg api.RequestConfig) (*api.Response, error) {
	attempt := 0
	for {
		resp, err := c.requester.Do(ctx, c.endpoint, cfg)

		status := 0
		if resp != nil {
			status = resp.Status
		}
		if err == nil && resp.OK() {
			return resp, nil
		}

		retry, delay := c.retry.ShouldRetry(status, err, attempt)
		if !retry {
			if err != nil {
				return nil, fmt.Errorf("request %s %s: %w", cfg.Method, cfg.Path, err)
			}
			return resp, nil
		}

		c.logger.Debug("retrying request",
			zap.String("method", cfg.Method),
			zap.String("path", cfg.Path),
			zap.Int("status", status),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if serr := c.sleep(ctx, delay); serr != nil {
			return nil, serr
		}
		attempt++
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
