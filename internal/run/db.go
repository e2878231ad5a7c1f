package run

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

const runColumns = `run_id, workspace_id, stage_id, trigger, time_created, time_started, time_completed, error, aws_request_id, log_group, log_stream`

// pgdb is the run database on postgres
type pgdb struct {
	*sql.DB
}

// create inserts a run, provided its stage belongs to the run's workspace.
func (db *pgdb) create(ctx context.Context, run *Run) error {
	_, err := db.Exec(ctx, `
INSERT INTO runs (
    run_id,
    workspace_id,
    stage_id,
    trigger,
    time_created
)
SELECT @run_id::text, workspace_id, stage_id, @trigger::jsonb, @time_created::timestamptz
FROM stages
WHERE workspace_id = @workspace_id
AND   stage_id = @stage_id
`, pgx.NamedArgs{
		"run_id":       run.ID,
		"workspace_id": run.WorkspaceID,
		"stage_id":     run.StageID,
		"trigger":      run.Trigger,
		"time_created": run.TimeCreated,
	})
	return err
}

func (db *pgdb) get(ctx context.Context, workspaceID, runID resource.ID) (*Run, error) {
	rows := db.Query(ctx, `
SELECT `+runColumns+`
FROM runs
WHERE workspace_id = $1
AND   run_id = $2
`, workspaceID, runID)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Run])
}

func (db *pgdb) listByStage(ctx context.Context, workspaceID, stageID resource.ID, opts resource.PageOptions) ([]*Run, int64, error) {
	rows := db.Query(ctx, `
SELECT `+runColumns+`
FROM runs
WHERE workspace_id = $1
AND   stage_id = $2
ORDER BY time_created DESC
LIMIT $3 OFFSET $4
`, workspaceID, stageID, opts.GetLimit(), opts.GetOffset())
	runs, err := sql.CollectRows(rows, pgx.RowToAddrOfStructByName[Run])
	if err != nil {
		return nil, 0, err
	}
	count, err := db.Int(ctx, `
SELECT count(*)
FROM runs
WHERE workspace_id = $1
AND   stage_id = $2
`, workspaceID, stageID)
	if err != nil {
		return nil, 0, err
	}
	return runs, count, nil
}

// update retrieves a run for update, invoking fn to modify it before
// persisting the modifications.
func (db *pgdb) update(ctx context.Context, workspaceID, runID resource.ID, fn func(*Run) error) (*Run, error) {
	var run *Run
	err := db.Tx(ctx, func(ctx context.Context) error {
		rows := db.Query(ctx, `
SELECT `+runColumns+`
FROM runs
WHERE workspace_id = $1
AND   run_id = $2
FOR UPDATE
`, workspaceID, runID)
		var err error
		run, err = sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Run])
		if err != nil {
			return err
		}
		if err := fn(run); err != nil {
			return err
		}
		_, err = db.Exec(ctx, `
UPDATE runs
SET time_started = @time_started,
    time_completed = @time_completed,
    error = @error,
    aws_request_id = @aws_request_id,
    log_group = @log_group,
    log_stream = @log_stream
WHERE run_id = @run_id
`, pgx.NamedArgs{
			"run_id":         run.ID,
			"time_started":   run.TimeStarted,
			"time_completed": run.TimeCompleted,
			"error":          run.Error,
			"aws_request_id": run.AWSRequestID,
			"log_group":      run.LogGroup,
			"log_stream":     run.LogStream,
		})
		return err
	})
	return run, err
}

func (db *pgdb) putChunk(ctx context.Context, chunk Chunk) error {
	_, err := db.Exec(ctx, `
INSERT INTO run_logs (run_id, "offset", data)
VALUES ($1, $2, $3)
ON CONFLICT (run_id, "offset") DO UPDATE SET data = EXCLUDED.data
`, chunk.RunID, chunk.Offset, chunk.Data)
	return err
}

// getLogs returns the concatenation of all the chunks of a run's logs. No
// logs is not an error because they may not have been uploaded yet.
func (db *pgdb) getLogs(ctx context.Context, runID resource.ID) ([]byte, error) {
	var data []byte
	err := db.QueryRow(ctx, `
SELECT coalesce(string_agg(data, ''::bytea ORDER BY "offset"), ''::bytea)
FROM run_logs
WHERE run_id = $1
`, runID).Scan(&data)
	return data, err
}
