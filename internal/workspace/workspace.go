// Package workspace provides the tenant registry. Every other console resource
// belongs to exactly one workspace.
package workspace

import (
	"log/slog"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
)

type (
	Workspace struct {
		ID        resource.ID `db:"workspace_id"`
		Slug      string      `db:"slug"`
		CreatedAt time.Time   `db:"created_at"`
	}

	CreateOptions struct {
		Slug *string `schema:"slug,required"`
	}
)

func newWorkspace(opts CreateOptions) (*Workspace, error) {
	if err := resource.ValidateName(opts.Slug); err != nil {
		return nil, err
	}
	return &Workspace{
		ID:        resource.NewID(resource.WorkspaceKind),
		Slug:      *opts.Slug,
		CreatedAt: internal.CurrentTimestamp(),
	}, nil
}

func (ws *Workspace) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", ws.ID.String()),
		slog.String("slug", ws.Slug),
	)
}
