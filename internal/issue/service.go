package issue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

type (
	Service struct {
		logr.Logger
		*Subscriber

		db  *pgdb
		api *api
	}

	Options struct {
		*sql.DB
		logr.Logger

		Subscriber SubscriberOptions
	}
)

func NewService(opts Options) *Service {
	svc := &Service{
		Logger: opts.Logger,
		db:     &pgdb{DB: opts.DB},
	}
	if opts.Subscriber.Logger.GetSink() == nil {
		opts.Subscriber.Logger = opts.Logger
	}
	svc.Subscriber = NewSubscriber(svc, opts.Subscriber)
	svc.api = &api{Service: svc}
	return svc
}

func (s *Service) AddHandlers(r *mux.Router) {
	s.api.addHandlers(r)
}

// Extract issues from a log subscription message and record them against the
// stage registered for the message's log group. Messages from unregistered
// log groups are ignored.
func (s *Service) Extract(ctx context.Context, data *LogsData) error {
	lg, err := s.db.getLogGroup(ctx, data.LogGroup)
	if errors.Is(err, internal.ErrResourceNotFound) {
		s.V(2).Info("ignoring unregistered log group", "log_group", data.LogGroup)
		return nil
	} else if err != nil {
		return fmt.Errorf("retrieving log group: %w", err)
	}
	for _, event := range data.LogEvents {
		occ, ok := parseEvent(event)
		if !ok {
			continue
		}
		issue := newIssue(lg, occ)
		if err := s.db.upsert(ctx, issue); err != nil {
			s.Error(err, "recording issue", "log_group", lg.LogGroup, "stage_id", lg.StageID)
			return err
		}
		issuesExtracted.Inc()
		s.V(1).Info("recorded issue", "issue", issue)
	}
	return nil
}

// RegisterLogGroup routes errors in a log group to a stage.
func (s *Service) RegisterLogGroup(ctx context.Context, stageID resource.ID, logGroup string) error {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	if logGroup == "" {
		return &internal.ErrMissingParameter{Parameter: "log_group"}
	}
	if err := s.db.registerLogGroup(ctx, workspaceID, stageID, logGroup); err != nil {
		s.Error(err, "registering log group", "log_group", logGroup, "stage_id", stageID)
		return err
	}
	s.V(0).Info("registered log group", "log_group", logGroup, "stage_id", stageID)
	return nil
}

func (s *Service) Get(ctx context.Context, issueID resource.ID) (*Issue, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	issue, err := s.db.get(ctx, workspaceID, issueID)
	if err != nil {
		s.Error(err, "retrieving issue", "id", issueID)
		return nil, err
	}
	s.V(9).Info("retrieved issue", "issue", issue)
	return issue, nil
}

func (s *Service) ListByStage(ctx context.Context, stageID resource.ID, opts ListOptions) (*resource.Page[*Issue], error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	issues, count, err := s.db.listByStage(ctx, workspaceID, stageID, opts)
	if err != nil {
		s.Error(err, "listing issues", "stage_id", stageID)
		return nil, err
	}
	s.V(9).Info("listed issues", "stage_id", stageID, "count", len(issues))
	return resource.NewPage(issues, opts.PageOptions, count), nil
}

// Resolve an issue. It is reopened if the error occurs again.
func (s *Service) Resolve(ctx context.Context, issueID resource.ID) (*Issue, error) {
	workspaceID, err := authz.WorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	issue, err := s.db.resolve(ctx, workspaceID, issueID, internal.CurrentTimestamp())
	if err != nil {
		s.Error(err, "resolving issue", "id", issueID)
		return nil, err
	}
	s.V(0).Info("resolved issue", "issue", issue)
	return issue, nil
}

// NewDeleter returns a daemon that deletes issues that have stayed resolved
// for longer than the threshold.
func (s *Service) NewDeleter(threshold, interval time.Duration) *resource.Deleter[*Issue] {
	return &resource.Deleter[*Issue]{
		Logger:                s.Logger.WithValues("component", "issue-deleter"),
		AgeThreshold:          threshold,
		OverrideCheckInterval: interval,
		Client:                &resolvedIssues{db: s.db},
	}
}

// resolvedIssues exposes resolved issues across all workspaces to the
// deleter.
type resolvedIssues struct {
	db *pgdb
}

func (r *resolvedIssues) ListOlderThan(ctx context.Context, t time.Time) ([]*Issue, error) {
	return r.db.listResolvedBefore(ctx, t)
}

func (r *resolvedIssues) Delete(ctx context.Context, id resource.ID) error {
	return r.db.delete(ctx, id)
}
