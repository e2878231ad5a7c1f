package issue

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

const issueColumns = `issue_id, workspace_id, stage_id, "group", error, message, log_group, count, time_seen, time_resolved, time_created`

// pgdb is the issue database on postgres
type pgdb struct {
	*sql.DB
}

// registerLogGroup maps a log group to a stage, provided the stage belongs to
// the workspace. A log group already registered by another workspace is left
// untouched.
func (db *pgdb) registerLogGroup(ctx context.Context, workspaceID, stageID resource.ID, logGroup string) error {
	_, err := db.Exec(ctx, `
INSERT INTO issue_log_groups (
    log_group,
    workspace_id,
    stage_id
)
SELECT @log_group::text, workspace_id, stage_id
FROM stages
WHERE workspace_id = @workspace_id
AND   stage_id = @stage_id
ON CONFLICT (log_group) DO UPDATE
SET stage_id = EXCLUDED.stage_id
WHERE issue_log_groups.workspace_id = EXCLUDED.workspace_id
`, pgx.NamedArgs{
		"log_group":    logGroup,
		"workspace_id": workspaceID,
		"stage_id":     stageID,
	})
	return err
}

func (db *pgdb) getLogGroup(ctx context.Context, logGroup string) (*LogGroup, error) {
	rows := db.Query(ctx, `
SELECT log_group, workspace_id, stage_id
FROM issue_log_groups
WHERE log_group = $1
`, logGroup)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[LogGroup])
}

// upsert inserts an issue or, if its group has been seen before on the
// stage, counts another occurrence and reopens it.
func (db *pgdb) upsert(ctx context.Context, issue *Issue) error {
	_, err := db.Exec(ctx, `
INSERT INTO issues (
    issue_id,
    workspace_id,
    stage_id,
    "group",
    error,
    message,
    log_group,
    count,
    time_seen,
    time_created
) VALUES (
    @issue_id,
    @workspace_id,
    @stage_id,
    @group,
    @error,
    @message,
    @log_group,
    1,
    @time_seen,
    @time_created
)
ON CONFLICT (stage_id, "group") DO UPDATE
SET count         = issues.count + 1,
    error         = EXCLUDED.error,
    message       = EXCLUDED.message,
    log_group     = EXCLUDED.log_group,
    time_seen     = GREATEST(issues.time_seen, EXCLUDED.time_seen),
    time_resolved = NULL
`, pgx.NamedArgs{
		"issue_id":     issue.ID,
		"workspace_id": issue.WorkspaceID,
		"stage_id":     issue.StageID,
		"group":        issue.Group,
		"error":        issue.Error,
		"message":      issue.Message,
		"log_group":    issue.LogGroup,
		"time_seen":    issue.TimeSeen,
		"time_created": issue.TimeCreated,
	})
	return err
}

func (db *pgdb) get(ctx context.Context, workspaceID, issueID resource.ID) (*Issue, error) {
	rows := db.Query(ctx, `
SELECT `+issueColumns+`
FROM issues
WHERE workspace_id = $1
AND   issue_id = $2
`, workspaceID, issueID)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Issue])
}

func (db *pgdb) listByStage(ctx context.Context, workspaceID, stageID resource.ID, opts ListOptions) ([]*Issue, int64, error) {
	rows := db.Query(ctx, `
SELECT `+issueColumns+`
FROM issues
WHERE workspace_id = $1
AND   stage_id = $2
AND   (time_resolved IS NOT NULL) = $3
ORDER BY time_seen DESC
LIMIT $4 OFFSET $5
`, workspaceID, stageID, opts.Resolved, opts.GetLimit(), opts.GetOffset())
	issues, err := sql.CollectRows(rows, pgx.RowToAddrOfStructByName[Issue])
	if err != nil {
		return nil, 0, err
	}
	count, err := db.Int(ctx, `
SELECT count(*)
FROM issues
WHERE workspace_id = $1
AND   stage_id = $2
AND   (time_resolved IS NOT NULL) = $3
`, workspaceID, stageID, opts.Resolved)
	if err != nil {
		return nil, 0, err
	}
	return issues, count, nil
}

func (db *pgdb) resolve(ctx context.Context, workspaceID, issueID resource.ID, at time.Time) (*Issue, error) {
	rows := db.Query(ctx, `
UPDATE issues
SET time_resolved = coalesce(time_resolved, $3)
WHERE workspace_id = $1
AND   issue_id = $2
RETURNING `+issueColumns,
		workspaceID, issueID, at)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Issue])
}

// listResolvedBefore lists issues across all workspaces that were resolved
// before the given time.
func (db *pgdb) listResolvedBefore(ctx context.Context, before time.Time) ([]*Issue, error) {
	rows := db.Query(ctx, `
SELECT `+issueColumns+`
FROM issues
WHERE time_resolved < $1
`, before)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[Issue])
}

func (db *pgdb) delete(ctx context.Context, issueID resource.ID) error {
	_, err := db.Exec(ctx, `DELETE FROM issues WHERE issue_id = $1`, issueID)
	return err
}
