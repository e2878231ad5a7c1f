package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leg100/console/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/whoami", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get(WorkspaceHeader) + " " + r.Header.Get("Authorization")))
	})
	mux.HandleFunc("/api/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", mediaType)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"status":"404","title":"not found","detail":"stage does not exist"}]}`))
	})
	mux.HandleFunc("/api/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{
		URL:       srv.URL,
		Workspace: "acme",
		Token:     "s3cr3t",
	})
	require.NoError(t, err)

	t.Run("headers", func(t *testing.T) {
		req, err := client.NewRequest("GET", "whoami", nil)
		require.NoError(t, err)
		var got bytesWriter
		require.NoError(t, client.Do(ctx, req, &got))
		assert.Equal(t, "acme Bearer s3cr3t", string(got))
	})

	t.Run("not found with details", func(t *testing.T) {
		req, err := client.NewRequest("GET", "missing", nil)
		require.NoError(t, err)
		err = client.Do(ctx, req, nil)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
		assert.EqualError(t, err, "resource not found: not found: stage does not exist")
	})

	t.Run("unmapped status", func(t *testing.T) {
		req, err := client.NewRequest("GET", "teapot", nil)
		require.NoError(t, err)
		err = client.Do(ctx, req, nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTeapot, apiErr.Status)
		assert.EqualError(t, err, "I'm a teapot")
	})
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(ClientConfig{URL: "ftp://example.com"})
	assert.Error(t, err)
}

type bytesWriter []byte

func (b *bytesWriter) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}
