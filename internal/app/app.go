// Package app manages apps and the stages they are deployed to.
package app

import (
	"log/slog"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
)

type (
	// App is an application within a workspace.
	App struct {
		ID          resource.ID `db:"app_id"`
		WorkspaceID resource.ID `db:"workspace_id"`
		Name        string      `db:"name"`
		CreatedAt   time.Time   `db:"created_at"`
	}

	// Stage is a deployment target of an app, e.g. production in us-east-1.
	Stage struct {
		ID          resource.ID `db:"stage_id"`
		AppID       resource.ID `db:"app_id"`
		WorkspaceID resource.ID `db:"workspace_id"`
		Name        string      `db:"name"`
		Region      string      `db:"region"`
		CreatedAt   time.Time   `db:"created_at"`
	}

	CreateAppOptions struct {
		Name *string `schema:"name,required"`
	}

	CreateStageOptions struct {
		Name   *string `schema:"name,required"`
		Region string  `schema:"region,required"`
	}
)

func newApp(workspaceID resource.ID, opts CreateAppOptions) (*App, error) {
	if err := resource.ValidateName(opts.Name); err != nil {
		return nil, err
	}
	return &App{
		ID:          resource.NewID(resource.AppKind),
		WorkspaceID: workspaceID,
		Name:        *opts.Name,
		CreatedAt:   internal.CurrentTimestamp(),
	}, nil
}

func newStage(app *App, opts CreateStageOptions) (*Stage, error) {
	if err := resource.ValidateName(opts.Name); err != nil {
		return nil, err
	}
	if opts.Region == "" {
		return nil, &internal.ErrMissingParameter{Parameter: "region"}
	}
	return &Stage{
		ID:          resource.NewID(resource.StageKind),
		AppID:       app.ID,
		WorkspaceID: app.WorkspaceID,
		Name:        *opts.Name,
		Region:      opts.Region,
		CreatedAt:   internal.CurrentTimestamp(),
	}, nil
}

func (a *App) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID.String()),
		slog.String("name", a.Name),
	)
}

func (s *Stage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", s.ID.String()),
		slog.String("app_id", s.AppID.String()),
		slog.String("name", s.Name),
		slog.String("region", s.Region),
	)
}
