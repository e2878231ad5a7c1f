// Package pubsub provides cluster-wide publishing and subscribing of events.
// Events are published via postgres notifications, which postgres delivers
// only once the publishing transaction commits.
package pubsub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leg100/console/internal/resource"
)

const (
	AppRepoConnectedEvent     EventType = "app.repo.connected"
	RunCreatedEvent           EventType = "run.created"
	RunStartedEvent           EventType = "run.started"
	RunCompletedEvent         EventType = "run.completed"
	StateUpdateCompletedEvent EventType = "state.update.completed"
)

// ErrSubscriptionTerminated is for use by subscribers to indicate that their
// subscription has been terminated by the broker.
var ErrSubscriptionTerminated = errors.New("broker terminated the subscription")

type (
	// EventType identifies the type of event
	EventType string

	// Event is something that happened within a workspace.
	Event struct {
		ID          uuid.UUID       `json:"id"`
		Type        EventType       `json:"type"`
		WorkspaceID resource.ID     `json:"workspace_id"`
		Properties  json.RawMessage `json:"properties"`
		Time        time.Time       `json:"time"`
	}
)

// NewEvent constructs an event, marshaling the given properties.
func NewEvent(typ EventType, workspaceID resource.ID, properties any) (Event, error) {
	raw, err := json.Marshal(properties)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:          uuid.New(),
		Type:        typ,
		WorkspaceID: workspaceID,
		Properties:  raw,
		Time:        time.Now().UTC(),
	}, nil
}

func (e Event) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", e.ID.String()),
		slog.String("type", string(e.Type)),
		slog.String("workspace_id", e.WorkspaceID.String()),
	)
}
