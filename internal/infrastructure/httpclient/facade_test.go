package httpclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
	"github.com/opspanel/opspanel-cli/test/testutil"
)

func newFacadeClient(server *testutil.MockAPIServer) *Client {
	client := New(Config{BaseURL: server.URL})
	client.SetTokens(api.TokenPair{AccessToken: "test-token", RefreshToken: "r"})
	return client
}

func TestFacade_CRUDRoundtrip(t *testing.T) {
	server := testutil.NewMockAPIServer()
	defer server.Close()
	server.RequireToken = "test-token"
	client := newFacadeClient(server)
	ctx := context.Background()

	created, err := client.Create(ctx, "jobs", map[string]interface{}{"name": "backup"})
	require.NoError(t, err)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "backup", created["name"])

	all, err := client.GetAll(ctx, "jobs")
	require.NoError(t, err)
	require.Len(t, all, 1)

	got, err := client.GetByID(ctx, "jobs", id)
	require.NoError(t, err)
	assert.Equal(t, "backup", got["name"])

	updated, err := client.Update(ctx, "jobs", id, map[string]interface{}{"name": "restore"})
	require.NoError(t, err)
	assert.Equal(t, "restore", updated["name"])

	patched, err := client.Patch(ctx, "jobs", id, map[string]interface{}{"state": "done"})
	require.NoError(t, err)
	assert.Equal(t, "restore", patched["name"], "patch keeps unmentioned fields")
	assert.Equal(t, "done", patched["state"])

	require.NoError(t, client.Delete(ctx, "jobs", id))

	_, err = client.GetByID(ctx, "jobs", id)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Message, "not found")
}

func TestFacade_HeaderShape(t *testing.T) {
	server := testutil.NewMockAPIServer()
	defer server.Close()
	server.Seed("jobs", "1", map[string]interface{}{"id": "1"})
	client := newFacadeClient(server)
	ctx := context.Background()

	_, err := client.GetByID(ctx, "jobs", "1")
	require.NoError(t, err)
	_, err = client.Create(ctx, "jobs", map[string]interface{}{"name": "x"})
	require.NoError(t, err)
	require.NoError(t, client.Delete(ctx, "jobs", "1"))

	requests := server.Requests()
	require.Len(t, requests, 3)

	get, post, del := requests[0], requests[1], requests[2]
	assert.Equal(t, "Bearer test-token", get.Header.Get("Authorization"))
	assert.Empty(t, get.Header.Get("Content-Type"), "bodiless GET carries no content type")
	assert.Equal(t, "application/json", post.Header.Get("Content-Type"))
	assert.Empty(t, del.Header.Get("Content-Type"), "bodiless DELETE carries no content type")
}

func TestFacade_URLShape(t *testing.T) {
	server := testutil.NewMockAPIServer()
	defer server.Close()
	server.Seed("users", "7", map[string]interface{}{"id": "7"})
	client := newFacadeClient(server)
	ctx := context.Background()

	_, err := client.GetAll(ctx, "users")
	require.NoError(t, err)
	_, err = client.GetByID(ctx, "users", "7")
	require.NoError(t, err)

	requests := server.Requests()
	assert.Equal(t, "/users/", requests[0].Path)
	assert.Equal(t, "/users/7", requests[1].Path)
}

func TestFacade_RetryAgainstServer(t *testing.T) {
	server := testutil.NewMockAPIServer()
	defer server.Close()
	server.Seed("jobs", "1", map[string]interface{}{"id": "1", "name": "backup"})
	server.FailuresRemaining = 2
	server.FailureStatus = http.StatusServiceUnavailable

	client := New(Config{
		BaseURL: server.URL,
		Retry: &BackoffPolicy{
			MaxRetries:        3,
			RetryDelay:        1, // nanosecond-scale, keep the test fast
			RetryableStatuses: DefaultRetryableStatuses(),
		},
	})
	client.SetTokens(api.TokenPair{AccessToken: "t"})

	got, err := client.GetByID(context.Background(), "jobs", "1")
	require.NoError(t, err)
	assert.Equal(t, "backup", got["name"])
	assert.Len(t, server.Requests(), 3, "two failures then success")
}
