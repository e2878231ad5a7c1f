package state

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

const updateColumns = `update_id, workspace_id, stage_id, "index", command, source, time_created, time_started, time_completed, time_canceled, time_queued, resource_created, resource_updated, resource_deleted, resource_same`

type (
	// pgdb is the state database on postgres
	pgdb struct {
		*sql.DB
	}

	updateRow struct {
		UpdateID        resource.ID `db:"update_id"`
		WorkspaceID     resource.ID `db:"workspace_id"`
		StageID         resource.ID `db:"stage_id"`
		Index           int         `db:"index"`
		Command         Command     `db:"command"`
		Source          Source      `db:"source"`
		TimeCreated     time.Time   `db:"time_created"`
		TimeStarted     *time.Time  `db:"time_started"`
		TimeCompleted   *time.Time  `db:"time_completed"`
		TimeCanceled    *time.Time  `db:"time_canceled"`
		TimeQueued      *time.Time  `db:"time_queued"`
		ResourceCreated int         `db:"resource_created"`
		ResourceUpdated int         `db:"resource_updated"`
		ResourceDeleted int         `db:"resource_deleted"`
		ResourceSame    int         `db:"resource_same"`
	}

	errorRow struct {
		UpdateID resource.ID `db:"update_id"`
		Position int         `db:"position"`
		URN      *string     `db:"urn"`
		Message  string      `db:"message"`
	}
)

func (r updateRow) toUpdate() *Update {
	return &Update{
		ID:            r.UpdateID,
		WorkspaceID:   r.WorkspaceID,
		StageID:       r.StageID,
		Index:         r.Index,
		Command:       r.Command,
		Source:        r.Source,
		TimeCreated:   r.TimeCreated,
		TimeStarted:   r.TimeStarted,
		TimeCompleted: r.TimeCompleted,
		TimeCanceled:  r.TimeCanceled,
		TimeQueued:    r.TimeQueued,
		Resource: Counts{
			Created: r.ResourceCreated,
			Updated: r.ResourceUpdated,
			Deleted: r.ResourceDeleted,
			Same:    r.ResourceSame,
		},
	}
}

// createUpdate locks the stage to serialize the creation of its updates, and
// calls fn with the next index for the stage to construct the update before
// inserting it.
func (db *pgdb) createUpdate(ctx context.Context, workspaceID, stageID resource.ID, fn func(index int) (*Update, error)) (*Update, error) {
	var update *Update
	err := db.Tx(ctx, func(ctx context.Context) error {
		rows := db.Query(ctx, `
SELECT stage_id
FROM stages
WHERE workspace_id = $1
AND   stage_id = $2
FOR UPDATE
`, workspaceID, stageID)
		if _, err := sql.CollectOneRow(rows, pgx.RowTo[resource.ID]); err != nil {
			return err
		}
		index, err := db.Int(ctx, `
SELECT coalesce(max("index"), 0) + 1
FROM state_updates
WHERE stage_id = $1
`, stageID)
		if err != nil {
			return err
		}
		update, err = fn(int(index))
		if err != nil {
			return err
		}
		_, err = db.Exec(ctx, `
INSERT INTO state_updates (
    update_id,
    workspace_id,
    stage_id,
    "index",
    command,
    source,
    time_created,
    time_queued
) VALUES (
    @update_id,
    @workspace_id,
    @stage_id,
    @index,
    @command,
    @source,
    @time_created,
    @time_queued
)`, pgx.NamedArgs{
			"update_id":    update.ID,
			"workspace_id": update.WorkspaceID,
			"stage_id":     update.StageID,
			"index":        update.Index,
			"command":      update.Command,
			"source":       update.Source,
			"time_created": update.TimeCreated,
			"time_queued":  update.TimeQueued,
		})
		return err
	})
	return update, err
}

func (db *pgdb) getUpdate(ctx context.Context, workspaceID, updateID resource.ID, forUpdate bool) (*Update, error) {
	query := `
SELECT ` + updateColumns + `
FROM state_updates
WHERE workspace_id = $1
AND   update_id = $2
`
	if forUpdate {
		query += "FOR UPDATE"
	}
	rows := db.Query(ctx, query, workspaceID, updateID)
	row, err := sql.CollectOneRow(rows, pgx.RowToStructByName[updateRow])
	if err != nil {
		return nil, err
	}
	update := row.toUpdate()
	if err := db.loadErrors(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}

// listUpdates lists a stage's updates, most recently started first, with
// those yet to start last.
func (db *pgdb) listUpdates(ctx context.Context, workspaceID, stageID resource.ID) ([]*Update, error) {
	rows := db.Query(ctx, `
SELECT `+updateColumns+`
FROM state_updates
WHERE workspace_id = $1
AND   stage_id = $2
ORDER BY time_started DESC NULLS LAST, "index" DESC
`, workspaceID, stageID)
	results, err := sql.CollectRows(rows, pgx.RowToStructByName[updateRow])
	if err != nil {
		return nil, err
	}
	updates := make([]*Update, len(results))
	for i, row := range results {
		updates[i] = row.toUpdate()
	}
	if err := db.loadErrors(ctx, updates...); err != nil {
		return nil, err
	}
	return updates, nil
}

// loadErrors populates the errors of the given updates.
func (db *pgdb) loadErrors(ctx context.Context, updates ...*Update) error {
	if len(updates) == 0 {
		return nil
	}
	ids := make([]string, len(updates))
	byID := make(map[resource.ID]*Update, len(updates))
	for i, u := range updates {
		ids[i] = u.ID.String()
		byID[u.ID] = u
	}
	rows := db.Query(ctx, `
SELECT update_id, position, urn, message
FROM state_update_errors
WHERE update_id = ANY($1::text[])
ORDER BY update_id, position
`, ids)
	results, err := sql.CollectRows(rows, pgx.RowToStructByName[errorRow])
	if err != nil {
		return err
	}
	for _, row := range results {
		u := byID[row.UpdateID]
		u.Errors = append(u.Errors, Error{URN: row.URN, Message: row.Message})
	}
	return nil
}

// updateTimestamps persists the timestamps of an update.
func (db *pgdb) updateTimestamps(ctx context.Context, update *Update) error {
	_, err := db.Exec(ctx, `
UPDATE state_updates
SET time_started = @time_started,
    time_completed = @time_completed,
    time_canceled = @time_canceled,
    time_queued = @time_queued
WHERE update_id = @update_id
`, pgx.NamedArgs{
		"update_id":      update.ID,
		"time_started":   update.TimeStarted,
		"time_completed": update.TimeCompleted,
		"time_canceled":  update.TimeCanceled,
		"time_queued":    update.TimeQueued,
	})
	return err
}

func (db *pgdb) insertResourceEvent(ctx context.Context, ev *ResourceEvent) error {
	_, err := db.Exec(ctx, `
INSERT INTO state_events (
    state_event_id,
    workspace_id,
    stage_id,
    update_id,
    urn,
    type,
    action,
    time_created
) VALUES (
    @state_event_id,
    @workspace_id,
    @stage_id,
    @update_id,
    @urn,
    @type,
    @action,
    @time_created
)`, pgx.NamedArgs{
		"state_event_id": ev.ID,
		"workspace_id":   ev.WorkspaceID,
		"stage_id":       ev.StageID,
		"update_id":      ev.UpdateID,
		"urn":            ev.URN,
		"type":           ev.Type,
		"action":         ev.Action,
		"time_created":   ev.TimeCreated,
	})
	return err
}

func (db *pgdb) listResourceEvents(ctx context.Context, workspaceID, updateID resource.ID) ([]*ResourceEvent, error) {
	rows := db.Query(ctx, `
SELECT state_event_id, workspace_id, stage_id, update_id, urn, type, action, time_created
FROM state_events
WHERE workspace_id = $1
AND   update_id = $2
`, workspaceID, updateID)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[ResourceEvent])
}

// countActions counts an update's resource events by action.
func (db *pgdb) countActions(ctx context.Context, updateID resource.ID) (Counts, error) {
	type actionCount struct {
		Action Action `db:"action"`
		Count  int    `db:"count"`
	}
	rows := db.Query(ctx, `
SELECT action, count(*)::int AS count
FROM state_events
WHERE update_id = $1
GROUP BY action
`, updateID)
	results, err := sql.CollectRows(rows, pgx.RowToStructByName[actionCount])
	if err != nil {
		return Counts{}, err
	}
	actions := make(map[Action]int, len(results))
	for _, r := range results {
		actions[r.Action] = r.Count
	}
	return countActions(actions), nil
}

// complete persists the counts, errors and completion time of an update.
func (db *pgdb) complete(ctx context.Context, update *Update) error {
	for i, e := range update.Errors {
		_, err := db.Exec(ctx, `
INSERT INTO state_update_errors (update_id, position, urn, message)
VALUES ($1, $2, $3, $4)
`, update.ID, i, e.URN, e.Message)
		if err != nil {
			return err
		}
	}
	_, err := db.Exec(ctx, `
UPDATE state_updates
SET time_completed = @time_completed,
    resource_created = @resource_created,
    resource_updated = @resource_updated,
    resource_deleted = @resource_deleted,
    resource_same = @resource_same
WHERE update_id = @update_id
`, pgx.NamedArgs{
		"update_id":        update.ID,
		"time_completed":   update.TimeCompleted,
		"resource_created": update.Resource.Created,
		"resource_updated": update.Resource.Updated,
		"resource_deleted": update.Resource.Deleted,
		"resource_same":    update.Resource.Same,
	})
	return err
}
