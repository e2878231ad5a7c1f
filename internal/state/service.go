package state

import (
	"context"

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

// CreateUpdate creates an update for a stage, assigning it the next index in
// the stage's sequence of updates.
func (s *Service) CreateUpdate(ctx context.Context, opts CreateUpdateOptions) (*Update, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	update, err := s.db.createUpdate(ctx, workspaceID, opts.StageID, func(index int) (*Update, error) {
		return newUpdate(workspaceID, index, opts)
	})
	if err != nil {
		s.Error(err, "creating update", "stage_id", opts.StageID)
		return nil, err
	}
	s.V(0).Info("created update", "update", update)
	return update, nil
}

// StartUpdate marks the update as started, taking it off the queue if it was
// queued.
func (s *Service) StartUpdate(ctx context.Context, updateID resource.ID) (*Update, error) {
	update, err := s.modify(ctx, updateID, func(update *Update) error {
		if update.TimeStarted != nil {
			return internal.ErrUpdateAlreadyStarted
		}
		update.TimeStarted = new(internal.CurrentTimestamp())
		update.TimeQueued = nil
		return nil
	})
	if err != nil {
		s.Error(err, "starting update", "id", updateID)
		return nil, err
	}
	s.V(0).Info("started update", "update", update)
	return update, nil
}

func (s *Service) CancelUpdate(ctx context.Context, updateID resource.ID) (*Update, error) {
	update, err := s.modify(ctx, updateID, func(update *Update) error {
		if update.TimeCanceled == nil {
			update.TimeCanceled = new(internal.CurrentTimestamp())
		}
		return nil
	})
	if err != nil {
		s.Error(err, "canceling update", "id", updateID)
		return nil, err
	}
	s.V(0).Info("canceled update", "update", update)
	return update, nil
}

// modify an incomplete update within a transaction.
func (s *Service) modify(ctx context.Context, updateID resource.ID, fn func(*Update) error) (*Update, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	var update *Update
	err = s.db.Tx(ctx, func(ctx context.Context) (err error) {
		update, err = s.db.getUpdate(ctx, workspaceID, updateID, true)
		if err != nil {
			return err
		}
		if update.TimeCompleted != nil {
			return internal.ErrUpdateAlreadyCompleted
		}
		if err := fn(update); err != nil {
			return err
		}
		return s.db.updateTimestamps(ctx, update)
	})
	return update, err
}

// AddResourceEvents records actions taken on resources by an incomplete
// update.
func (s *Service) AddResourceEvents(ctx context.Context, updateID resource.ID, opts ...ResourceEventOptions) error {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	err = s.db.Tx(ctx, func(ctx context.Context) error {
		update, err := s.db.getUpdate(ctx, workspaceID, updateID, true)
		if err != nil {
			return err
		}
		if update.TimeCompleted != nil {
			return internal.ErrUpdateAlreadyCompleted
		}
		for _, o := range opts {
			ev, err := newResourceEvent(update, o)
			if err != nil {
				return err
			}
			if err := s.db.insertResourceEvent(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.Error(err, "adding resource events", "update_id", updateID)
		return err
	}
	s.V(9).Info("added resource events", "update_id", updateID, "count", len(opts))
	return nil
}

// CompleteUpdate completes an update, recording its errors and recomputing
// its resource counts from its resource events. A state.update.completed
// event is published once the update is committed.
func (s *Service) CompleteUpdate(ctx context.Context, updateID resource.ID, errs []Error) (*Update, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	var update *Update
	err = s.db.Tx(ctx, func(ctx context.Context) (err error) {
		update, err = s.db.getUpdate(ctx, workspaceID, updateID, true)
		if err != nil {
			return err
		}
		if update.TimeCompleted != nil {
			return internal.ErrUpdateAlreadyCompleted
		}
		update.Resource, err = s.db.countActions(ctx, updateID)
		if err != nil {
			return err
		}
		update.Errors = errs
		update.TimeCompleted = new(internal.CurrentTimestamp())
		if err := s.db.complete(ctx, update); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, pubsub.StateUpdateCompletedEvent, workspaceID, completedEvent{
			UpdateID: update.ID,
			StageID:  update.StageID,
			Errors:   len(errs),
		})
	})
	if err != nil {
		s.Error(err, "completing update", "id", updateID)
		return nil, err
	}
	s.V(0).Info("completed update", "update", update)
	return update, nil
}

func (s *Service) GetUpdate(ctx context.Context, updateID resource.ID) (*Update, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	update, err := s.db.getUpdate(ctx, workspaceID, updateID, false)
	if err != nil {
		s.Error(err, "retrieving update", "id", updateID)
		return nil, err
	}
	s.V(9).Info("retrieved update", "update", update)
	return update, nil
}

// ListUpdates lists a stage's updates, most recently started first.
func (s *Service) ListUpdates(ctx context.Context, stageID resource.ID) ([]*Update, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	updates, err := s.db.listUpdates(ctx, workspaceID, stageID)
	if err != nil {
		s.Error(err, "listing updates", "stage_id", stageID)
		return nil, err
	}
	s.V(9).Info("listed updates", "stage_id", stageID, "count", len(updates))
	return updates, nil
}

// ListResourceEvents lists an update's resource events in ascending order of
// resource name.
func (s *Service) ListResourceEvents(ctx context.Context, updateID resource.ID) ([]*ResourceEvent, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.db.listResourceEvents(ctx, workspaceID, updateID)
	if err != nil {
		s.Error(err, "listing resource events", "update_id", updateID)
		return nil, err
	}
	sortByName(events)
	s.V(9).Info("listed resource events", "update_id", updateID, "count", len(events))
	return events, nil
}
