// Package state records updates made to a stage's state and the resource
// events that make up each update.
package state

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
)

const (
	DeployCommand  Command = "deploy"
	RefreshCommand Command = "refresh"
	RemoveCommand  Command = "remove"
	EditCommand    Command = "edit"

	CLISource SourceType = "cli"
	CISource  SourceType = "ci"

	StatusQueued   Status = "queued"
	StatusCanceled Status = "canceled"
	StatusUpdated  Status = "updated"
	StatusError    Status = "error"
	StatusUpdating Status = "updating"
)

var (
	commandLabels = map[Command]string{
		DeployCommand:  "sst deploy",
		RefreshCommand: "sst refresh",
		RemoveCommand:  "sst remove",
		EditCommand:    "sst state edit",
	}

	statusLabels = map[Status]string{
		StatusQueued:   "Queued",
		StatusCanceled: "Canceled",
		StatusUpdated:  "Complete",
		StatusError:    "Error",
		StatusUpdating: "In Progress",
	}
)

type (
	// Command is the CLI command that made an update.
	Command string

	SourceType string

	// Status of an update, derived from its timestamps and errors.
	Status string

	// Source is where an update originated: a developer's CLI or a CI run.
	Source struct {
		Type       SourceType       `json:"type"`
		Properties SourceProperties `json:"properties"`
	}

	SourceProperties struct {
		RunID *resource.ID `json:"runID,omitempty"`
	}

	// Update is a change made to the state of a stage.
	Update struct {
		ID            resource.ID `db:"update_id"`
		WorkspaceID   resource.ID `db:"workspace_id"`
		StageID       resource.ID `db:"stage_id"`
		Index         int         `db:"index"`
		Command       Command     `db:"command"`
		Source        Source      `db:"source"`
		TimeCreated   time.Time   `db:"time_created"`
		TimeStarted   *time.Time  `db:"time_started"`
		TimeCompleted *time.Time  `db:"time_completed"`
		TimeCanceled  *time.Time  `db:"time_canceled"`
		TimeQueued    *time.Time  `db:"time_queued"`
		Resource      Counts      `db:"-"`
		Errors        []Error     `db:"-"`
	}

	// Counts are the number of resources per action made by an update.
	Counts struct {
		Created int
		Updated int
		Deleted int
		Same    int
	}

	// Error is an error reported by an update, optionally attributed to a
	// resource.
	Error struct {
		URN     *string `json:"urn,omitempty"`
		Message string  `json:"message"`
	}

	CreateUpdateOptions struct {
		StageID resource.ID
		Command Command
		Source  Source
		// Queued is true if the update is waiting on a lock.
		Queued bool
	}

	// completedEvent is the payload of a state.update.completed event.
	completedEvent struct {
		UpdateID resource.ID `json:"updateID"`
		StageID  resource.ID `json:"stageID"`
		Errors   int         `json:"errors"`
	}
)

func newUpdate(workspaceID resource.ID, index int, opts CreateUpdateOptions) (*Update, error) {
	if _, ok := commandLabels[opts.Command]; !ok {
		return nil, internal.InvalidParameterError(fmt.Sprintf("invalid command: %s", opts.Command))
	}
	switch opts.Source.Type {
	case CLISource:
	case CISource:
		if opts.Source.Properties.RunID == nil {
			return nil, &internal.ErrMissingParameter{Parameter: "run_id"}
		}
	default:
		return nil, internal.InvalidParameterError(fmt.Sprintf("invalid source type: %s", opts.Source.Type))
	}
	now := internal.CurrentTimestamp()
	update := &Update{
		ID:          resource.NewID(resource.UpdateKind),
		WorkspaceID: workspaceID,
		StageID:     opts.StageID,
		Index:       index,
		Command:     opts.Command,
		Source:      opts.Source,
		TimeCreated: now,
	}
	if opts.Queued {
		update.TimeQueued = &now
	}
	return update, nil
}

// Status derives the status of the update.
func (u *Update) Status() Status {
	switch {
	case u.TimeCompleted != nil && len(u.Errors) > 0:
		return StatusError
	case u.TimeCompleted != nil:
		return StatusUpdated
	case u.TimeCanceled != nil:
		return StatusCanceled
	case u.TimeQueued != nil:
		return StatusQueued
	default:
		return StatusUpdating
	}
}

// StatusLabel is the human readable status, or a count of errors if the
// update failed.
func (u *Update) StatusLabel() string {
	if status := u.Status(); status != StatusError {
		return status.Label()
	}
	return ErrorCountCopy(len(u.Errors))
}

// Duration of the update, or zero if it has not both started and completed.
func (u *Update) Duration() time.Duration {
	if u.TimeStarted == nil || u.TimeCompleted == nil {
		return 0
	}
	return u.TimeCompleted.Sub(*u.TimeStarted)
}

// RunID returns the ID of the CI run that made the update, if any.
func (u *Update) RunID() (resource.ID, bool) {
	if u.Source.Type != CISource || u.Source.Properties.RunID == nil {
		return resource.ID{}, false
	}
	return *u.Source.Properties.RunID, true
}

func (u *Update) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", u.ID.String()),
		slog.String("stage_id", u.StageID.String()),
		slog.Int("index", u.Index),
		slog.String("command", string(u.Command)),
		slog.String("status", string(u.Status())),
	)
}

// Total number of resources affected by the update.
func (c Counts) Total() int {
	return c.Created + c.Updated + c.Deleted + c.Same
}

// Label is the CLI invocation of the command.
func (c Command) Label() string { return commandLabels[c] }

func (s Status) Label() string { return statusLabels[s] }

// CountCopy describes a number of resources.
func CountCopy(n int) string {
	if n == 1 {
		return "1 resource"
	}
	return fmt.Sprintf("%d resources", n)
}

// ErrorCountCopy describes a number of errors.
func ErrorCountCopy(n int) string {
	if n == 1 {
		return "1 error"
	}
	return fmt.Sprintf("%d errors", n)
}
