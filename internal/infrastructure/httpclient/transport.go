package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
	"github.com/opspanel/opspanel-cli/internal/core/ports"
)

// HTTPRequester is the net/http transport behind the pipeline. It performs
// exactly one exchange per call; the retry loop lives in the Client.
type HTTPRequester struct {
	client *http.Client
}

// NewHTTPRequester creates a transport with the given timeout.
func NewHTTPRequester(timeout time.Duration) *HTTPRequester {
	return &HTTPRequester{client: &http.Client{Timeout: timeout}}
}

// Do implements ports.Requester.
func (r *HTTPRequester) Do(ctx context.Context, endpoint api.Endpoint, req api.RequestConfig) (*api.Response, error) {
	fullURL, err := joinURL(endpoint.BaseURL, req.Path, req.Query)
	if err != nil {
		return nil, fmt.Errorf("build request URL: %w", err)
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if endpoint.UserAgent != "" {
		httpReq.Header.Set("User-Agent", endpoint.UserAgent)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &api.Response{Status: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}

func joinURL(base, p string, q map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = joinPath(u.Path, p)
	if len(q) > 0 {
		vals := u.Query()
		for k, v := range q {
			vals.Set(k, v)
		}
		u.RawQuery = vals.Encode()
	}
	return u.String(), nil
}

func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a[len(a)-1] == '/' {
		a = a[:len(a)-1]
	}
	if b[0] != '/' {
		b = "/" + b
	}
	return a + b
}

var _ ports.Requester = (*HTTPRequester)(nil)
