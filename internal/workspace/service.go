package workspace

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

type (
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

func (s *Service) Create(ctx context.Context, opts CreateOptions) (*Workspace, error) {
	ws, err := newWorkspace(opts)
	if err != nil {
		s.Error(err, "constructing workspace")
		return nil, err
	}
	if err := s.db.create(ctx, ws); err != nil {
		s.Error(err, "creating workspace", "workspace", ws)
		return nil, err
	}
	s.V(0).Info("created workspace", "workspace", ws)
	return ws, nil
}

func (s *Service) Get(ctx context.Context, id resource.ID) (*Workspace, error) {
	ws, err := s.db.get(ctx, id)
	if err != nil {
		s.Error(err, "retrieving workspace", "id", id)
		return nil, err
	}
	s.V(9).Info("retrieved workspace", "workspace", ws)
	return ws, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Workspace, error) {
	ws, err := s.db.getBySlug(ctx, slug)
	if err != nil {
		s.Error(err, "retrieving workspace", "slug", slug)
		return nil, err
	}
	s.V(9).Info("retrieved workspace", "workspace", ws)
	return ws, nil
}

func (s *Service) List(ctx context.Context) ([]*Workspace, error) {
	list, err := s.db.list(ctx)
	if err != nil {
		s.Error(err, "listing workspaces")
		return nil, err
	}
	s.V(9).Info("listed workspaces", "count", len(list))
	return list, nil
}
