package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Healthz(t *testing.T) {
	tests := []struct {
		name       string
		check      func(context.Context) error
		wantCode   int
		wantStatus string
	}{
		{"no check", nil, 200, "ok"},
		{"healthy", func(context.Context) error { return nil }, 200, "ok"},
		{"database down", func(context.Context) error { return errors.New("connection refused") }, 503, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := NewServer(logr.Discard(), ServerConfig{HealthCheck: tt.check})
			require.NoError(t, err)

			w := httptest.NewRecorder()
			srv.server.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
			assert.Equal(t, tt.wantCode, w.Code)

			var got healthz
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestServer_Routes(t *testing.T) {
	srv, err := NewServer(logr.Discard(), ServerConfig{
		Handlers: []Handlers{fakeHandlers{}},
		Middleware: []mux.MiddlewareFunc{
			func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("X-Middleware", "true")
					next.ServeHTTP(w, r)
				})
			},
		},
	})
	require.NoError(t, err)

	t.Run("root redirects to apps", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.server.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/app/apps", w.Header().Get("Location"))
	})

	t.Run("service routes use middleware", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.server.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/ping", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "true", w.Header().Get("X-Middleware"))
	})

	t.Run("cache busted static asset", func(t *testing.T) {
		path, err := AssetsFS.Path("/static/css/console.css")
		require.NoError(t, err)
		assert.Regexp(t, `^/static/css/console\.[0-9a-f]{64}\.css$`, path)

		w := httptest.NewRecorder()
		srv.server.Handler.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "max-age=31536000", w.Header().Get("Cache-Control"))
	})

	t.Run("copy script is embedded", func(t *testing.T) {
		path, err := AssetsFS.Path("/static/js/console.js")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		srv.server.Handler.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "navigator.clipboard.writeText")
	})

	t.Run("ssl requires cert and key", func(t *testing.T) {
		_, err := NewServer(logr.Discard(), ServerConfig{SSL: true})
		assert.Error(t, err)
	})
}

type fakeHandlers struct{}

func (fakeHandlers) AddHandlers(r *mux.Router) {
	APIRouter(r).HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
