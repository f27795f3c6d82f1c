package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
)

// Entity is a generic JSON object from the backend. The CLI does not model
// individual entity schemas; it passes them through.
type Entity = map[string]interface{}

// BuildHeaders returns the bearer authorization header, plus the JSON
// content type unless the request is bodiless.
func (c *Client) BuildHeaders(includeContentType bool) map[string]string {
	return c.headers.Headers(includeContentType)
}

// Create POSTs payload to the entity collection and returns the created
// entity.
func (c *Client) Create(ctx context.Context, entityType string, payload interface{}) (Entity, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", entityType, err)
	}
	resp, err := c.Do(ctx, api.RequestConfig{
		Method:  http.MethodPost,
		Path:    collectionPath(entityType),
		Headers: c.BuildHeaders(true),
		Body:    body,
	})
	if err != nil {
		return nil, err
	}
	var out Entity
	if err := DecodeResponse(resp, "failed to create "+entityType, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAll fetches every entity in the collection.
func (c *Client) GetAll(ctx context.Context, entityType string) ([]Entity, error) {
	resp, err := c.Do(ctx, api.RequestConfig{
		Method:  http.MethodGet,
		Path:    collectionPath(entityType),
		Headers: c.BuildHeaders(false),
	})
	if err != nil {
		return nil, err
	}
	var out []Entity
	if err := DecodeResponse(resp, "failed to list "+entityType, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a single entity.
func (c *Client) GetByID(ctx context.Context, entityType, id string) (Entity, error) {
	resp, err := c.Do(ctx, api.RequestConfig{
		Method:  http.MethodGet,
		Path:    itemPath(entityType, id),
		Headers: c.BuildHeaders(false),
	})
	if err != nil {
		return nil, err
	}
	var out Entity
	if err := DecodeResponse(resp, fmt.Sprintf("failed to fetch %s %s", entityType, id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update PUTs a full replacement of the entity.
func (c *Client) Update(ctx context.Context, entityType, id string, payload interface{}) (Entity, error) {
	return c.write(ctx, http.MethodPut, entityType, id, payload)
}

// Patch applies a partial update to the entity.
func (c *Client) Patch(ctx context.Context, entityType, id string, payload interface{}) (Entity, error) {
	return c.write(ctx, http.MethodPatch, entityType, id, payload)
}

func (c *Client) write(ctx context.Context, method, entityType, id string, payload interface{}) (Entity, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", entityType, err)
	}
	resp, err := c.Do(ctx, api.RequestConfig{
		Method:  method,
		Path:    itemPath(entityType, id),
		Headers: c.BuildHeaders(true),
		Body:    body,
	})
	if err != nil {
		return nil, err
	}
	var out Entity
	if err := DecodeResponse(resp, fmt.Sprintf("failed to update %s %s", entityType, id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the entity. A 204 from the backend resolves cleanly.
func (c *Client) Delete(ctx context.Context, entityType, id string) error {
	resp, err := c.Do(ctx, api.RequestConfig{
		Method:  http.MethodDelete,
		Path:    itemPath(entityType, id),
		Headers: c.BuildHeaders(false),
	})
	if err != nil {
		return err
	}
	return DecodeResponse(resp, fmt.Sprintf("failed to delete %s %s", entityType, id), nil)
}

// Get fetches an arbitrary path and decodes the JSON body into v.
func (c *Client) Get(ctx context.Context, path string, v interface{}) error {
	resp, err := c.Do(ctx, api.RequestConfig{
		Method:  http.MethodGet,
		Path:    path,
		Headers: c.BuildHeaders(false),
	})
	if err != nil {
		return err
	}
	return DecodeResponse(resp, "request failed: "+path, v)
}

// GetText fetches an arbitrary path and returns the raw body as text.
func (c *Client) GetText(ctx context.Context, path string) (string, error) {
	resp, err := c.Do(ctx, api.RequestConfig{
		Method:  http.MethodGet,
		Path:    path,
		Headers: c.BuildHeaders(false),
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", DecodeError(resp, "request failed: "+path)
	}
	return string(resp.Body), nil
}

// PostText sends a plain text body and returns the response text.
func (c *Client) PostText(ctx context.Context, path, body string) (string, error) {
	return c.sendText(ctx, http.MethodPost, path, body)
}

// PutText sends a plain text body with PUT and returns the response text.
func (c *Client) PutText(ctx context.Context, path, body string) (string, error) {
	return c.sendText(ctx, http.MethodPut, path, body)
}

func (c *Client) sendText(ctx context.Context, method, path, body string) (string, error) {
	headers := c.BuildHeaders(false)
	headers["Content-Type"] = "text/plain"
	resp, err := c.Do(ctx, api.RequestConfig{
		Method:  method,
		Path:    path,
		Headers: headers,
		Body:    []byte(body),
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", DecodeError(resp, "request failed: "+path)
	}
	return string(resp.Body), nil
}

func collectionPath(entityType string) string {
	return "/" + entityType + "/"
}

func itemPath(entityType, id string) string {
	return "/" + entityType + "/" + id
}
