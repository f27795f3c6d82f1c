package api

import "net/http"

// RequestConfig carries everything needed for one API call. Interceptors
// receive and return it, so a copy per call is intentional.
type RequestConfig struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    []byte
}

// Response is the raw result of a pipeline call. Callers interpret it via
// DecodeResponse; the pipeline itself never inspects the body.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// NoContent reports whether the response carries no body by contract.
func (r *Response) NoContent() bool {
	return r.Status == http.StatusNoContent
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}
