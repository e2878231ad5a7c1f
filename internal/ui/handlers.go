// Package ui serves the web UI.
package ui

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/apprepo"
	"github.com/leg100/console/internal/flags"
	consolehttp "github.com/leg100/console/internal/http"
	"github.com/leg100/console/internal/issue"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/run"
	"github.com/leg100/console/internal/state"
	"github.com/leg100/console/internal/ui/helpers"
	"github.com/templ-go/x/urlbuilder"
)

// DefaultGithubURL is the web URL of github.com.
const DefaultGithubURL = "https://github.com"

type (
	// Handlers registers all UI handlers
	Handlers struct {
		Logger    logr.Logger
		Apps      appService
		AppRepos  appRepoService
		Runs      runService
		State     stateService
		Issues    issueService
		Flags     flags.Resolver
		GithubURL *url.URL
	}

	appService interface {
		ListApps(ctx context.Context) ([]*app.App, error)
		GetApp(ctx context.Context, appID resource.ID) (*app.App, error)
		GetStage(ctx context.Context, stageID resource.ID) (*app.Stage, error)
		ListStages(ctx context.Context, appID resource.ID) ([]*app.Stage, error)
	}

	appRepoService interface {
		GetByID(ctx context.Context, id resource.ID) (*apprepo.AppRepo, error)
		GetByAppID(ctx context.Context, appID resource.ID) (*apprepo.AppRepo, error)
		Connect(ctx context.Context, opts apprepo.ConnectOptions) (*apprepo.AppRepo, error)
		Disconnect(ctx context.Context, id resource.ID) error
	}

	runService interface {
		Get(ctx context.Context, runID resource.ID) (*run.Run, error)
		GetLogs(ctx context.Context, runID resource.ID) ([]byte, error)
	}

	stateService interface {
		GetUpdate(ctx context.Context, updateID resource.ID) (*state.Update, error)
		ListUpdates(ctx context.Context, stageID resource.ID) ([]*state.Update, error)
		ListResourceEvents(ctx context.Context, updateID resource.ID) ([]*state.ResourceEvent, error)
	}

	issueService interface {
		ListByStage(ctx context.Context, stageID resource.ID, opts issue.ListOptions) (*resource.Page[*issue.Issue], error)
		Resolve(ctx context.Context, issueID resource.ID) (*issue.Issue, error)
	}
)

// AddHandlers registers all UI handlers with the router
func (h *Handlers) AddHandlers(r *mux.Router) {
	if h.GithubURL == nil {
		h.GithubURL, _ = url.Parse(DefaultGithubURL)
	}
	r = consolehttp.UIRouter(r)

	r.HandleFunc("/apps", h.listApps).Methods("GET")
	r.HandleFunc("/apps/{app_id}/app-repos", h.getAppRepo).Methods("GET")
	r.HandleFunc("/apps/{app_id}/app-repos/create", h.connectAppRepo).Methods("POST")
	r.HandleFunc("/app-repos/{app_repo_id}/delete", h.disconnectAppRepo).Methods("POST")

	r.HandleFunc("/stages/{stage_id}/updates", h.listUpdates).Methods("GET")
	r.HandleFunc("/updates/{update_id}", h.getUpdate).Methods("GET")

	r.HandleFunc("/stages/{stage_id}/issues", h.listIssues).Methods("GET")
	r.HandleFunc("/issues/{issue_id}/resolve", h.resolveIssue).Methods("POST")
}

// githubURL builds a URL on the github host from path segments, splitting
// any segment containing slashes, such as a branch name.
func (h *Handlers) githubURL(segments ...string) string {
	b := urlbuilder.New(h.GithubURL.Scheme, h.GithubURL.Host)
	for _, seg := range segments {
		for part := range strings.SplitSeq(seg, "/") {
			b.Path(part)
		}
	}
	return string(b.Build())
}

func isNotFound(err error) bool {
	return errors.Is(err, internal.ErrResourceNotFound)
}

// withErrorStatus maps an error to the status of the error page.
func withErrorStatus(err error) helpers.ErrorOption {
	switch {
	case isNotFound(err):
		return helpers.WithStatus(http.StatusNotFound)
	case errors.Is(err, internal.ErrAccessNotPermitted):
		return helpers.WithStatus(http.StatusForbidden)
	default:
		return helpers.WithStatus(http.StatusInternalServerError)
	}
}
