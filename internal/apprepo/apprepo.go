// Package apprepo connects apps to the git repos whose pushes trigger CI runs.
package apprepo

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gobwas/glob"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/run"
)

// GithubType is the only supported type of repo connection.
const GithubType = "github"

// DefaultBranchPattern matches every branch.
const DefaultBranchPattern = "*"

var ErrEmptyEventError = errors.New("event error must be non-empty")

type (
	// AppRepo connects an app to an external repo.
	AppRepo struct {
		ID             resource.ID  `db:"app_repo_id"`
		WorkspaceID    resource.ID  `db:"workspace_id"`
		AppID          resource.ID  `db:"app_id"`
		Type           string       `db:"type"`
		RepoID         int64        `db:"repo_id"`
		BranchPattern  string       `db:"branch_pattern"`
		StageName      string       `db:"stage_name"`
		LastEvent      *run.Trigger `db:"last_event"`
		LastEventError *string      `db:"last_event_error"`
		TimeLastEvent  *time.Time   `db:"time_last_event"`
		CreatedAt      time.Time    `db:"created_at"`
		UpdatedAt      time.Time    `db:"updated_at"`
	}

	ConnectOptions struct {
		// ID is generated if not provided.
		ID     *resource.ID
		AppID  resource.ID `schema:"app_id,required"`
		Type   string      `schema:"type"`
		RepoID int64       `schema:"repo_id,required"`
		// BranchPattern is a glob matching the branches that trigger runs.
		// Defaults to matching every branch.
		BranchPattern string `schema:"branch_pattern"`
		// StageName is the stage deployed by a push. Defaults to the name of
		// the branch.
		StageName string `schema:"stage_name"`
	}

	SetLastEventErrorOptions struct {
		// AppID scopes the error to a single app's connection in the caller's
		// workspace. Otherwise every connection to the repo is updated.
		AppID  *resource.ID
		RepoID int64
		Error  string
	}

	// connectedEvent is the payload of the app.repo.connected event.
	connectedEvent struct {
		AppID  resource.ID `json:"appID"`
		RepoID int64       `json:"repoID"`
	}
)

func newAppRepo(workspaceID resource.ID, opts ConnectOptions) (*AppRepo, error) {
	if opts.RepoID == 0 {
		return nil, &internal.ErrMissingParameter{Parameter: "repo_id"}
	}
	if opts.Type == "" {
		opts.Type = GithubType
	}
	if opts.Type != GithubType {
		return nil, internal.InvalidParameterError("unsupported repo type: " + opts.Type)
	}
	if opts.BranchPattern == "" {
		opts.BranchPattern = DefaultBranchPattern
	}
	if _, err := glob.Compile(opts.BranchPattern); err != nil {
		return nil, internal.InvalidParameterError("invalid branch pattern: " + err.Error())
	}
	id := resource.NewID(resource.AppRepoKind)
	if opts.ID != nil {
		id = *opts.ID
	}
	now := internal.CurrentTimestamp()
	return &AppRepo{
		ID:            id,
		WorkspaceID:   workspaceID,
		AppID:         opts.AppID,
		Type:          opts.Type,
		RepoID:        opts.RepoID,
		BranchPattern: opts.BranchPattern,
		StageName:     opts.StageName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Matches determines whether a push to the branch triggers a run.
func (r *AppRepo) Matches(branch string) bool {
	g, err := glob.Compile(r.BranchPattern)
	if err != nil {
		return false
	}
	return g.Match(branch)
}

// Stage returns the name of the stage deployed by a push to the branch.
func (r *AppRepo) Stage(branch string) string {
	if r.StageName != "" {
		return r.StageName
	}
	return branch
}

func (r *AppRepo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", r.ID.String()),
		slog.String("app_id", r.AppID.String()),
		slog.String("type", r.Type),
		slog.Int64("repo_id", r.RepoID),
	)
}
