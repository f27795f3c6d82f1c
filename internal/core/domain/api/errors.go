package api

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response surfaced to the caller. Message is the
// human-readable detail extracted from the JSON error body when one exists,
// otherwise the caller-supplied fallback. Body keeps the raw payload for
// callers that want more than the message.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// AsAPIError unwraps err into an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
