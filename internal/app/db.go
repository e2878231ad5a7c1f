package app

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

// pgdb is the app and stage database on postgres
type pgdb struct {
	*sql.DB
}

func (db *pgdb) createApp(ctx context.Context, app *App) error {
	_, err := db.Exec(ctx, `
INSERT INTO apps (
    app_id,
    workspace_id,
    name,
    created_at
) VALUES (
    @app_id,
    @workspace_id,
    @name,
    @created_at
)`, pgx.NamedArgs{
		"app_id":       app.ID,
		"workspace_id": app.WorkspaceID,
		"name":         app.Name,
		"created_at":   app.CreatedAt,
	})
	return err
}

func (db *pgdb) getApp(ctx context.Context, workspaceID, appID resource.ID) (*App, error) {
	rows := db.Query(ctx, `
SELECT app_id, workspace_id, name, created_at
FROM apps
WHERE workspace_id = $1
AND   app_id = $2
`, workspaceID, appID)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[App])
}

func (db *pgdb) getAppByName(ctx context.Context, workspaceID resource.ID, name string) (*App, error) {
	rows := db.Query(ctx, `
SELECT app_id, workspace_id, name, created_at
FROM apps
WHERE workspace_id = $1
AND   name = $2
`, workspaceID, name)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[App])
}

func (db *pgdb) listApps(ctx context.Context, workspaceID resource.ID) ([]*App, error) {
	rows := db.Query(ctx, `
SELECT app_id, workspace_id, name, created_at
FROM apps
WHERE workspace_id = $1
ORDER BY name ASC
`, workspaceID)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[App])
}

func (db *pgdb) createStage(ctx context.Context, stage *Stage) error {
	_, err := db.Exec(ctx, `
INSERT INTO stages (
    stage_id,
    app_id,
    workspace_id,
    name,
    region,
    created_at
) VALUES (
    @stage_id,
    @app_id,
    @workspace_id,
    @name,
    @region,
    @created_at
)`, pgx.NamedArgs{
		"stage_id":     stage.ID,
		"app_id":       stage.AppID,
		"workspace_id": stage.WorkspaceID,
		"name":         stage.Name,
		"region":       stage.Region,
		"created_at":   stage.CreatedAt,
	})
	return err
}

func (db *pgdb) getStage(ctx context.Context, workspaceID, stageID resource.ID) (*Stage, error) {
	rows := db.Query(ctx, `
SELECT stage_id, app_id, workspace_id, name, region, created_at
FROM stages
WHERE workspace_id = $1
AND   stage_id = $2
`, workspaceID, stageID)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Stage])
}

func (db *pgdb) getStageByName(ctx context.Context, workspaceID, appID resource.ID, name, region string) (*Stage, error) {
	rows := db.Query(ctx, `
SELECT stage_id, app_id, workspace_id, name, region, created_at
FROM stages
WHERE workspace_id = $1
AND   app_id = $2
AND   name = $3
AND   region = $4
`, workspaceID, appID, name, region)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Stage])
}

func (db *pgdb) listStages(ctx context.Context, workspaceID, appID resource.ID) ([]*Stage, error) {
	rows := db.Query(ctx, `
SELECT stage_id, app_id, workspace_id, name, region, created_at
FROM stages
WHERE workspace_id = $1
AND   app_id = $2
ORDER BY name ASC, region ASC
`, workspaceID, appID)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[Stage])
}
