// Package run tracks CI runs triggered by git pushes to connected repos.
package run

import (
	"log/slog"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
)

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusErrored   Status = "errored"
)

type (
	Status string

	// Run is a CI run of a stage.
	Run struct {
		ID            resource.ID `db:"run_id"`
		WorkspaceID   resource.ID `db:"workspace_id"`
		StageID       resource.ID `db:"stage_id"`
		Trigger       Trigger     `db:"trigger"`
		TimeCreated   time.Time   `db:"time_created"`
		TimeStarted   *time.Time  `db:"time_started"`
		TimeCompleted *time.Time  `db:"time_completed"`
		Error         *string     `db:"error"`
		AWSRequestID  *string     `db:"aws_request_id"`
		LogGroup      *string     `db:"log_group"`
		LogStream     *string     `db:"log_stream"`
	}

	// StartedOptions are reported by the runner once it has started a run.
	StartedOptions struct {
		RunID        resource.ID `json:"runID"`
		AWSRequestID string      `json:"awsRequestId"`
		LogGroup     string      `json:"logGroup"`
		LogStream    string      `json:"logStream"`
	}

	// CompletedOptions are reported by the runner once it has finished a run.
	CompletedOptions struct {
		RunID resource.ID
		Error *string
	}

	// startedEvent is the payload of a run.started event.
	startedEvent struct {
		WorkspaceID resource.ID `json:"workspaceID"`
		StartedOptions
	}

	// lifecycleEvent is the payload of run.created and run.completed events.
	lifecycleEvent struct {
		RunID   resource.ID `json:"runID"`
		StageID resource.ID `json:"stageID"`
		Error   *string     `json:"error,omitempty"`
	}
)

func newRun(workspaceID, stageID resource.ID, trigger Trigger) *Run {
	return &Run{
		ID:          resource.NewID(resource.RunKind),
		WorkspaceID: workspaceID,
		StageID:     stageID,
		Trigger:     trigger,
		TimeCreated: internal.CurrentTimestamp(),
	}
}

func (r *Run) Status() Status {
	switch {
	case r.TimeCompleted != nil && r.Error != nil:
		return StatusErrored
	case r.TimeCompleted != nil:
		return StatusSucceeded
	case r.TimeStarted != nil:
		return StatusRunning
	default:
		return StatusQueued
	}
}

func (r *Run) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", r.ID.String()),
		slog.String("stage_id", r.StageID.String()),
		slog.String("status", string(r.Status())),
	)
}
