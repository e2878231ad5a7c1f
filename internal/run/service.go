package run

import (
	"context"
	"fmt"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/pubsub"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

type (
	Service struct {
		logr.Logger

		db        *pgdb
		api       *api
		publisher publisher
	}

	Options struct {
		*sql.DB
		logr.Logger

		Publisher publisher
	}

	publisher interface {
		Publish(ctx context.Context, typ pubsub.EventType, workspaceID resource.ID, properties any) error
	}
)

func NewService(opts Options) *Service {
	svc := &Service{
		Logger:    opts.Logger,
		db:        &pgdb{DB: opts.DB},
		publisher: opts.Publisher,
	}
	svc.api = &api{Service: svc}
	return svc
}

func (s *Service) AddHandlers(r *mux.Router) {
	s.api.addHandlers(r)
}

// RegisterEventHandlers subscribes the service to the events it handles.
func (s *Service) RegisterEventHandlers(broker *pubsub.Broker) {
	pubsub.Subscribe(broker, pubsub.RunStartedEvent, "run-started", s.handleStarted)
}

// handleStarted records that the runner has started a run.
func (s *Service) handleStarted(ctx context.Context, event startedEvent) error {
	_, err := s.Started(ctx, event.StartedOptions)
	return err
}

// Create a run for a stage and publish a run.created event.
func (s *Service) Create(ctx context.Context, stageID resource.ID, trigger Trigger) (*Run, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	run := newRun(workspaceID, stageID, trigger)
	err = s.db.Tx(ctx, func(ctx context.Context) error {
		if err := s.db.create(ctx, run); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, pubsub.RunCreatedEvent, workspaceID, lifecycleEvent{
			RunID:   run.ID,
			StageID: run.StageID,
		})
	})
	if err != nil {
		s.Error(err, "creating run", "stage_id", stageID)
		return nil, err
	}
	s.V(0).Info("created run", "run", run)
	return run, nil
}

// ReportStarted publishes a run.started event on behalf of a runner. The run
// itself is updated by the event handler.
func (s *Service) ReportStarted(ctx context.Context, opts StartedOptions) error {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	// check run exists in workspace before publishing
	if _, err := s.db.get(ctx, workspaceID, opts.RunID); err != nil {
		s.Error(err, "reporting run started", "id", opts.RunID)
		return err
	}
	return s.publisher.Publish(ctx, pubsub.RunStartedEvent, workspaceID, startedEvent{
		WorkspaceID:    workspaceID,
		StartedOptions: opts,
	})
}

// Started stamps the start time and log location of a run.
func (s *Service) Started(ctx context.Context, opts StartedOptions) (*Run, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	run, err := s.db.update(ctx, workspaceID, opts.RunID, func(run *Run) error {
		if run.TimeStarted != nil {
			return internal.ErrRunAlreadyStarted
		}
		run.TimeStarted = new(internal.CurrentTimestamp())
		run.AWSRequestID = &opts.AWSRequestID
		run.LogGroup = &opts.LogGroup
		run.LogStream = &opts.LogStream
		return nil
	})
	if err != nil {
		s.Error(err, "starting run", "id", opts.RunID)
		return nil, err
	}
	s.V(0).Info("started run", "run", run)
	return run, nil
}

// Completed stamps the completion time and any error of a run, and publishes
// a run.completed event.
func (s *Service) Completed(ctx context.Context, opts CompletedOptions) (*Run, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	var run *Run
	err = s.db.Tx(ctx, func(ctx context.Context) (err error) {
		run, err = s.db.update(ctx, workspaceID, opts.RunID, func(run *Run) error {
			if run.TimeCompleted != nil {
				return internal.ErrRunAlreadyCompleted
			}
			run.TimeCompleted = new(internal.CurrentTimestamp())
			run.Error = opts.Error
			return nil
		})
		if err != nil {
			return err
		}
		return s.publisher.Publish(ctx, pubsub.RunCompletedEvent, workspaceID, lifecycleEvent{
			RunID:   run.ID,
			StageID: run.StageID,
			Error:   run.Error,
		})
	})
	if err != nil {
		s.Error(err, "completing run", "id", opts.RunID)
		return nil, err
	}
	s.V(0).Info("completed run", "run", run)
	return run, nil
}

func (s *Service) Get(ctx context.Context, runID resource.ID) (*Run, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	run, err := s.db.get(ctx, workspaceID, runID)
	if err != nil {
		s.Error(err, "retrieving run", "id", runID)
		return nil, err
	}
	s.V(9).Info("retrieved run", "run", run)
	return run, nil
}

func (s *Service) ListByStage(ctx context.Context, stageID resource.ID, opts resource.PageOptions) (*resource.Page[*Run], error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	runs, count, err := s.db.listByStage(ctx, workspaceID, stageID, opts)
	if err != nil {
		s.Error(err, "listing runs", "stage_id", stageID)
		return nil, err
	}
	s.V(9).Info("listed runs", "stage_id", stageID, "count", len(runs))
	return resource.NewPage(runs, opts, count), nil
}

// AppendLogs adds a chunk of CI output to a run's logs.
func (s *Service) AppendLogs(ctx context.Context, opts AppendLogsOptions) error {
	if _, err := s.Get(ctx, opts.RunID); err != nil {
		return err
	}
	chunk, err := newChunk(opts)
	if err != nil {
		s.Error(err, "constructing log chunk", "id", opts.RunID)
		return err
	}
	if err := s.db.putChunk(ctx, chunk); err != nil {
		s.Error(err, "writing logs", "id", opts.RunID, "offset", opts.Offset)
		return err
	}
	s.V(9).Info("written logs", "id", opts.RunID, "offset", opts.Offset, "size", len(opts.Data))
	return nil
}

// GetLogs returns the entirety of a run's CI output uploaded so far.
func (s *Service) GetLogs(ctx context.Context, runID resource.ID) ([]byte, error) {
	if _, err := s.Get(ctx, runID); err != nil {
		return nil, err
	}
	logs, err := s.db.getLogs(ctx, runID)
	if err != nil {
		s.Error(err, "reading logs", "id", runID)
		return nil, fmt.Errorf("reading logs: %w", err)
	}
	s.V(9).Info("read logs", "id", runID, "size", len(logs))
	return logs, nil
}
