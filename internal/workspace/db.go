package workspace

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

// pgdb is the workspace database on postgres
type pgdb struct {
	*sql.DB
}

func (db *pgdb) create(ctx context.Context, ws *Workspace) error {
	_, err := db.Exec(ctx, `
INSERT INTO workspaces (
    workspace_id,
    slug,
    created_at
) VALUES (
    @workspace_id,
    @slug,
    @created_at
)`, pgx.NamedArgs{
		"workspace_id": ws.ID,
		"slug":         ws.Slug,
		"created_at":   ws.CreatedAt,
	})
	return err
}

func (db *pgdb) get(ctx context.Context, id resource.ID) (*Workspace, error) {
	rows := db.Query(ctx, `
SELECT workspace_id, slug, created_at
FROM workspaces
WHERE workspace_id = $1
`, id)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Workspace])
}

func (db *pgdb) getBySlug(ctx context.Context, slug string) (*Workspace, error) {
	rows := db.Query(ctx, `
SELECT workspace_id, slug, created_at
FROM workspaces
WHERE slug = $1
`, slug)
	return sql.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Workspace])
}

func (db *pgdb) list(ctx context.Context) ([]*Workspace, error) {
	rows := db.Query(ctx, `
SELECT workspace_id, slug, created_at
FROM workspaces
ORDER BY slug ASC
`)
	return sql.CollectRows(rows, pgx.RowToAddrOfStructByName[Workspace])
}
