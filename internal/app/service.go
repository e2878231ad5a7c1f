package app

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

type (
	// Service manages apps and stages. Every operation is scoped to the
	// workspace of the actor in the context.
	Service struct {
		logr.Logger

		db  *pgdb
		api *api
	}

	Options struct {
		*sql.DB
		logr.Logger
	}
)

func NewService(opts Options) *Service {
	svc := &Service{
		Logger: opts.Logger,
		db:     &pgdb{DB: opts.DB},
	}
	svc.api = &api{Service: svc}
	return svc
}

func (s *Service) AddHandlers(r *mux.Router) {
	s.api.addHandlers(r)
}

func (s *Service) CreateApp(ctx context.Context, opts CreateAppOptions) (*App, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	app, err := newApp(workspaceID, opts)
	if err != nil {
		s.Error(err, "constructing app")
		return nil, err
	}
	if err := s.db.createApp(ctx, app); err != nil {
		s.Error(err, "creating app", "app", app)
		return nil, err
	}
	s.V(0).Info("created app", "app", app)
	return app, nil
}

func (s *Service) GetApp(ctx context.Context, appID resource.ID) (*App, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	app, err := s.db.getApp(ctx, workspaceID, appID)
	if err != nil {
		s.Error(err, "retrieving app", "id", appID)
		return nil, err
	}
	s.V(9).Info("retrieved app", "app", app)
	return app, nil
}

func (s *Service) GetAppByName(ctx context.Context, name string) (*App, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	app, err := s.db.getAppByName(ctx, workspaceID, name)
	if err != nil {
		s.Error(err, "retrieving app", "name", name)
		return nil, err
	}
	s.V(9).Info("retrieved app", "app", app)
	return app, nil
}

func (s *Service) ListApps(ctx context.Context) ([]*App, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := s.db.listApps(ctx, workspaceID)
	if err != nil {
		s.Error(err, "listing apps")
		return nil, err
	}
	s.V(9).Info("listed apps", "count", len(apps))
	return apps, nil
}

func (s *Service) CreateStage(ctx context.Context, appID resource.ID, opts CreateStageOptions) (*Stage, error) {
	app, err := s.GetApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	stage, err := newStage(app, opts)
	if err != nil {
		s.Error(err, "constructing stage")
		return nil, err
	}
	if err := s.db.createStage(ctx, stage); err != nil {
		s.Error(err, "creating stage", "stage", stage)
		return nil, err
	}
	s.V(0).Info("created stage", "stage", stage)
	return stage, nil
}

func (s *Service) GetStage(ctx context.Context, stageID resource.ID) (*Stage, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	stage, err := s.db.getStage(ctx, workspaceID, stageID)
	if err != nil {
		s.Error(err, "retrieving stage", "id", stageID)
		return nil, err
	}
	s.V(9).Info("retrieved stage", "stage", stage)
	return stage, nil
}

// GetStageByName retrieves the stage of an app with the given name and region.
func (s *Service) GetStageByName(ctx context.Context, appID resource.ID, name, region string) (*Stage, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	stage, err := s.db.getStageByName(ctx, workspaceID, appID, name, region)
	if err != nil {
		s.Error(err, "retrieving stage", "app_id", appID, "name", name, "region", region)
		return nil, err
	}
	s.V(9).Info("retrieved stage", "stage", stage)
	return stage, nil
}

func (s *Service) ListStages(ctx context.Context, appID resource.ID) ([]*Stage, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	stages, err := s.db.listStages(ctx, workspaceID, appID)
	if err != nil {
		s.Error(err, "listing stages", "app_id", appID)
		return nil, err
	}
	s.V(9).Info("listed stages", "app_id", appID, "count", len(stages))
	return stages, nil
}
