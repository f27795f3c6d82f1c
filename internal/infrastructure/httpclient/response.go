package httpclient

import (
	"encoding/json"
	"fmt"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
)

// DecodeResponse interprets a raw pipeline response. On 2xx it unmarshals the
// JSON body into v (v may be nil to discard it); a 204 leaves v untouched and
// returns nil. On any other status it returns an *api.APIError whose message
// is the JSON "detail" field when the body parses, otherwise fallback.
func DecodeResponse(resp *api.Response, fallback string, v interface{}) error {
	if !resp.OK() {
		return DecodeError(resp, fallback)
	}
	if resp.NoContent() || len(resp.Body) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// DecodeError builds the APIError for a failed response.
func DecodeError(resp *api.Response, fallback string) *api.APIError {
	msg := fallback
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err == nil {
		switch {
		case payload.Detail != "":
			msg = payload.Detail
		case payload.Message != "":
			msg = payload.Message
		}
	}
	return &api.APIError{Status: resp.Status, Message: msg, Body: resp.Body}
}
