package sql

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/leg100/console/internal/logr"
)

var (
	mu sync.Mutex

	//go:embed migrations/*.sql
	migrations embed.FS
)

// migrate runs all outstanding migrations against the database. Only one
// migration runs at a time within a process; concurrent processes are
// serialized by tern's own advisory lock.
func migrate(ctx context.Context, logger logr.Logger, connString string) error {
	mu.Lock()
	defer mu.Unlock()

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	if err := m.LoadMigrations(fsys); err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m.OnStart = func(sequence int32, name, direction, sql string) {
		logger.V(1).Info("migrating database", "sequence", sequence, "name", name, "direction", direction)
	}
	return m.Migrate(ctx)
}
