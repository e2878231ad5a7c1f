package apprepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/run"
	"github.com/leg100/console/internal/sql"
)

const columns = `app_repo_id, workspace_id, app_id, type, repo_id, branch_pattern, stage_name, last_event, last_event_error, time_last_event, created_at, updated_at`

// pgdb is the repo connection database on postgres
type pgdb struct {
	*sql.DB
}

// listByRepo lists connections to a repo across all workspaces.
func (db *pgdb) listByRepo(ctx context.Context, typ string, repoID int64) ([]*AppRepo, error) {
	rows := db.Query(ctx, `
SELECT `+columns+`
FROM app_repos
WHERE type = $1
AND   repo_id = $2
ORDER BY created_at ASC
`, typ, repoID)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[AppRepo])
}

func (db *pgdb) getByID(ctx context.Context, workspaceID, id resource.ID) (*AppRepo, error) {
	rows := db.Query(ctx, `
SELECT `+columns+`
FROM app_repos
WHERE workspace_id = $1
AND   app_repo_id = $2
`, workspaceID, id)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[AppRepo])
}

func (db *pgdb) getByAppID(ctx context.Context, workspaceID, appID resource.ID) (*AppRepo, error) {
	rows := db.Query(ctx, `
SELECT `+columns+`
FROM app_repos
WHERE workspace_id = $1
AND   app_id = $2
`, workspaceID, appID)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[AppRepo])
}

// upsert inserts a connection, or if the app is already connected to a repo
// of the same type, updates the existing connection. The app must belong to
// the connection's workspace.
func (db *pgdb) upsert(ctx context.Context, repo *AppRepo) (*AppRepo, error) {
	rows := db.Query(ctx, `
INSERT INTO app_repos (
    app_repo_id,
    workspace_id,
    app_id,
    type,
    repo_id,
    branch_pattern,
    stage_name,
    created_at,
    updated_at
)
SELECT @app_repo_id::text, workspace_id, app_id, @type::text, @repo_id::bigint, @branch_pattern::text, @stage_name::text, @created_at::timestamptz, @updated_at::timestamptz
FROM apps
WHERE workspace_id = @workspace_id
AND   app_id = @app_id
ON CONFLICT (app_id, type) DO UPDATE
SET repo_id = EXCLUDED.repo_id,
    branch_pattern = EXCLUDED.branch_pattern,
    stage_name = EXCLUDED.stage_name,
    updated_at = EXCLUDED.updated_at
RETURNING `+columns,
		pgx.NamedArgs{
			"app_repo_id":    repo.ID,
			"workspace_id":   repo.WorkspaceID,
			"app_id":         repo.AppID,
			"type":           repo.Type,
			"repo_id":        repo.RepoID,
			"branch_pattern": repo.BranchPattern,
			"stage_name":     repo.StageName,
			"created_at":     repo.CreatedAt,
			"updated_at":     repo.UpdatedAt,
		})
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[AppRepo])
}

func (db *pgdb) delete(ctx context.Context, workspaceID, id resource.ID) error {
	_, err := db.Exec(ctx, `
DELETE FROM app_repos
WHERE workspace_id = $1
AND   app_repo_id = $2
`, workspaceID, id)
	return err
}

// setLastEvent records the trigger on every connection to the repo. It is not
// an error if there are no connections.
func (db *pgdb) setLastEvent(ctx context.Context, repoID int64, trigger run.Trigger) error {
	_, err := db.Exec(ctx, `
UPDATE app_repos
SET last_event = $1,
    last_event_error = NULL,
    time_last_event = $2
WHERE type = $3
AND   repo_id = $4
`, trigger, internal.CurrentTimestamp(), GithubType, repoID)
	if errors.Is(err, internal.ErrResourceNotFound) {
		return nil
	}
	return err
}

// setLastEventError records an error on connections to the repo. If
// workspaceID is non-nil then only the app's connection in that workspace is
// updated, otherwise every connection to the repo.
func (db *pgdb) setLastEventError(ctx context.Context, workspaceID, appID *resource.ID, repoID int64, msg string) error {
	var err error
	if appID != nil {
		_, err = db.Exec(ctx, `
UPDATE app_repos
SET last_event_error = $1
WHERE workspace_id = $2
AND   repo_id = $3
AND   app_id = $4
`, msg, *workspaceID, repoID, *appID)
	} else {
		_, err = db.Exec(ctx, `
UPDATE app_repos
SET last_event_error = $1
WHERE repo_id = $2
`, msg, repoID)
	}
	if errors.Is(err, internal.ErrResourceNotFound) {
		return nil
	}
	return err
}
