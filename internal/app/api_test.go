package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DataDog/jsonapi"
	"github.com/gorilla/mux"
	"github.com/leg100/console/internal/api/types"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
	"github.com/leg100/console/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI(t *testing.T) {
	db := sql.NewTestPool(t)
	workspaces := workspace.NewService(workspace.Options{DB: db, Logger: logr.Discard()})
	acme, err := workspaces.Create(t.Context(), workspace.CreateOptions{Slug: new("acme")})
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authz.WithActor(r.Context(), &authz.User{Email: "bob@example.com", WorkspaceID: acme.ID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	NewService(Options{DB: db, Logger: logr.Discard()}).AddHandlers(r)

	body := `{"data":{"type":"apps","attributes":{"name":"console"}}}`
	req := httptest.NewRequest("POST", "/api/apps", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var app types.App
	require.NoError(t, jsonapi.Unmarshal(w.Body.Bytes(), &app))
	assert.Equal(t, "console", app.Name)

	body = `{"data":{"type":"stages","attributes":{"name":"production","region":"us-east-1"}}}`
	req = httptest.NewRequest("POST", "/api/apps/"+app.ID+"/stages", strings.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req = httptest.NewRequest("GET", "/api/apps/"+app.ID+"/stages", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stages []*types.Stage
	require.NoError(t, jsonapi.Unmarshal(w.Body.Bytes(), &stages))
	require.Len(t, stages, 1)
	assert.Equal(t, "us-east-1", stages[0].Region)

	req = httptest.NewRequest("GET", "/api/apps/"+resource.NewID(resource.AppKind).String(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
