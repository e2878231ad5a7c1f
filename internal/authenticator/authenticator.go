// Package authenticator identifies the user behind each request from headers
// set by an upstream authenticating proxy, and scopes the request to one of
// their workspaces.
package authenticator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
	consoleapi "github.com/leg100/console/internal/api"
	"github.com/leg100/console/internal/authz"
	consolehttp "github.com/leg100/console/internal/http"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/workspace"
)

const (
	// EmailHeader carries the email address of the user, as asserted by the
	// proxy.
	EmailHeader = "X-Forwarded-Email"
	// WorkspaceHeader selects the workspace by slug.
	WorkspaceHeader = "X-Console-Workspace"
	// WorkspaceQueryParam selects the workspace by slug when the header is
	// absent, e.g. from a browser link.
	WorkspaceQueryParam = "workspace"

	DefaultWorkspace = "default"
)

// publicPaths are served without a user, to callers that authenticate by
// other means, such as webhook signatures.
var publicPaths = []string{
	consolehttp.WebhookPrefix + "/",
	consolehttp.APIPrefix + "/issues/ingest",
	consolehttp.APIPrefix + "/workspaces",
}

type (
	Options struct {
		logr.Logger

		Workspaces workspaceGetter
		// DefaultWorkspace is the slug of the workspace used when the request
		// does not select one.
		DefaultWorkspace string
	}

	workspaceGetter interface {
		GetBySlug(ctx context.Context, slug string) (*workspace.Workspace, error)
	}

	authenticator struct {
		logr.Logger

		workspaces       workspaceGetter
		defaultWorkspace string
	}
)

// NewMiddleware returns middleware that installs an actor in the request
// context: a public actor for public paths, otherwise a user scoped to the
// selected workspace.
func NewMiddleware(opts Options) mux.MiddlewareFunc {
	a := &authenticator{
		Logger:           opts.Logger,
		workspaces:       opts.Workspaces,
		defaultWorkspace: opts.DefaultWorkspace,
	}
	if a.defaultWorkspace == "" {
		a.defaultWorkspace = DefaultWorkspace
	}
	return a.middleware
}

func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r.URL.Path) {
			ctx := authz.WithActor(r.Context(), &authz.Public{})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		user, err := a.authenticate(r)
		if err != nil {
			a.V(1).Info("refusing request", "path", r.URL.Path, "error", err.Error())
			writeError(w, r, err)
			return
		}
		ctx := authz.WithActor(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *authenticator) authenticate(r *http.Request) (*authz.User, error) {
	email := strings.TrimSpace(r.Header.Get(EmailHeader))
	if email == "" {
		return nil, internal.ErrUnauthorized
	}
	slug := r.Header.Get(WorkspaceHeader)
	if slug == "" {
		slug = r.URL.Query().Get(WorkspaceQueryParam)
	}
	if slug == "" {
		slug = a.defaultWorkspace
	}
	ws, err := a.workspaces.GetBySlug(r.Context(), slug)
	if errors.Is(err, internal.ErrResourceNotFound) {
		return nil, internal.ErrAccessNotPermitted
	} else if err != nil {
		return nil, err
	}
	return &authz.User{Email: email, WorkspaceID: ws.ID}, nil
}

func isPublic(path string) bool {
	for _, prefix := range publicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if strings.HasPrefix(r.URL.Path, consolehttp.APIPrefix+"/") {
		consoleapi.Error(w, err)
		return
	}
	switch {
	case errors.Is(err, internal.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, internal.ErrAccessNotPermitted):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
