package flags

import (
	"net/http/httptest"
	"testing"

	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/resource"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		host   string
		email  string
		want   bool
	}{
		{"localhost", "", "localhost:8080", "", true},
		{"staff", "", "console.example.com", "jay@sst.dev", true},
		{"customer", "", "console.example.com", "jay@example.com", false},
		{"no user", "", "console.example.com", "", false},
		{"custom domain", "@acme.io", "console.example.com", "jay@acme.io", true},
		{"custom domain excludes default", "@acme.io", "console.example.com", "jay@sst.dev", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolver{InternalDomain: tt.domain}.Resolve(tt.host, tt.email)
			assert.Equal(t, tt.want, got.Deploys)
		})
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "https://console.example.com/app/apps", nil)
	assert.False(t, Resolver{}.FromRequest(r).Deploys)

	ctx := authz.WithActor(r.Context(), &authz.User{
		Email:       "jay@sst.dev",
		WorkspaceID: resource.NewID(resource.WorkspaceKind),
	})
	assert.True(t, Resolver{}.FromRequest(r.WithContext(ctx)).Deploys)
}
