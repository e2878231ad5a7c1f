package apprepo

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/pubsub"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/run"
	"github.com/leg100/console/internal/sql"
)

type (
	Service struct {
		logr.Logger

		db        *pgdb
		api       *api
		webhook   *webhookHandler
		publisher publisher
	}

	Options struct {
		*sql.DB
		logr.Logger

		Publisher publisher
		Apps      stageLister
		Runs      runCreator

		// WebhookSecret is the shared secret with which github signs webhook
		// payloads.
		WebhookSecret string
	}

	publisher interface {
		Publish(ctx context.Context, typ pubsub.EventType, workspaceID resource.ID, properties any) error
	}

	stageLister interface {
		ListStages(ctx context.Context, appID resource.ID) ([]*app.Stage, error)
	}

	runCreator interface {
		Create(ctx context.Context, stageID resource.ID, trigger run.Trigger) (*run.Run, error)
	}
)

func NewService(opts Options) *Service {
	svc := &Service{
		Logger:    opts.Logger,
		db:        &pgdb{DB: opts.DB},
		publisher: opts.Publisher,
	}
	svc.api = &api{Service: svc}
	svc.webhook = &webhookHandler{
		Logger: opts.Logger.WithValues("component", "webhook"),
		secret: opts.WebhookSecret,
		repos:  svc,
		apps:   opts.Apps,
		runs:   opts.Runs,
	}
	return svc
}

func (s *Service) AddHandlers(r *mux.Router) {
	s.api.addHandlers(r)
	s.webhook.addHandlers(r)
}

// ListByRepo lists the connections to an external repo across all
// workspaces.
func (s *Service) ListByRepo(ctx context.Context, typ string, repoID int64) ([]*AppRepo, error) {
	repos, err := s.db.listByRepo(ctx, typ, repoID)
	if err != nil {
		s.Error(err, "listing repo connections", "type", typ, "repo_id", repoID)
		return nil, err
	}
	s.V(9).Info("listed repo connections", "type", typ, "repo_id", repoID, "count", len(repos))
	return repos, nil
}

func (s *Service) GetByID(ctx context.Context, id resource.ID) (*AppRepo, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := s.db.getByID(ctx, workspaceID, id)
	if err != nil {
		s.Error(err, "retrieving repo connection", "id", id)
		return nil, err
	}
	s.V(9).Info("retrieved repo connection", "repo", repo)
	return repo, nil
}

func (s *Service) GetByAppID(ctx context.Context, appID resource.ID) (*AppRepo, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := s.db.getByAppID(ctx, workspaceID, appID)
	if err != nil {
		s.Error(err, "retrieving repo connection", "app_id", appID)
		return nil, err
	}
	s.V(9).Info("retrieved repo connection", "repo", repo)
	return repo, nil
}

// Connect an app to a repo, replacing any existing connection of the same
// type. An app.repo.connected event is published once the connection is
// committed.
func (s *Service) Connect(ctx context.Context, opts ConnectOptions) (*AppRepo, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := newAppRepo(workspaceID, opts)
	if err != nil {
		s.Error(err, "constructing repo connection")
		return nil, err
	}
	err = s.db.Tx(ctx, func(ctx context.Context) error {
		repo, err = s.db.upsert(ctx, repo)
		if err != nil {
			return err
		}
		return s.publisher.Publish(ctx, pubsub.AppRepoConnectedEvent, workspaceID, connectedEvent{
			AppID:  repo.AppID,
			RepoID: repo.RepoID,
		})
	})
	if err != nil {
		s.Error(err, "connecting repo", "app_id", opts.AppID, "repo_id", opts.RepoID)
		return nil, err
	}
	s.V(0).Info("connected repo", "repo", repo)
	return repo, nil
}

func (s *Service) Disconnect(ctx context.Context, id resource.ID) error {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	if err := s.db.delete(ctx, workspaceID, id); err != nil {
		s.Error(err, "disconnecting repo", "id", id)
		return err
	}
	s.V(0).Info("disconnected repo", "id", id)
	return nil
}

// SetLastEvent records the most recent push to a repo on every connection to
// it, clearing any previous error.
func (s *Service) SetLastEvent(ctx context.Context, repoID int64, trigger run.Trigger) error {
	if err := s.db.setLastEvent(ctx, repoID, trigger); err != nil {
		s.Error(err, "setting last event", "repo_id", repoID)
		return err
	}
	s.V(9).Info("set last event", "repo_id", repoID, "commit", trigger.Commit.ID)
	return nil
}

// SetLastEventError records an error handling the last event for a repo.
func (s *Service) SetLastEventError(ctx context.Context, opts SetLastEventErrorOptions) error {
	if opts.Error == "" {
		return ErrEmptyEventError
	}
	var workspaceID *resource.ID
	if opts.AppID != nil {
		id, err := authz.WorkspaceID(ctx)
		if err != nil {
			return err
		}
		workspaceID = &id
	}
	if err := s.db.setLastEventError(ctx, workspaceID, opts.AppID, opts.RepoID, opts.Error); err != nil {
		s.Error(err, "setting last event error", "repo_id", opts.RepoID)
		return err
	}
	s.V(9).Info("set last event error", "repo_id", opts.RepoID, "error", opts.Error)
	return nil
}
