package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
)

type (
	// Publisher publishes events to the cluster.
	Publisher struct {
		logr.Logger

		db notifier
	}

	notifier interface {
		Notify(ctx context.Context, channel string, payload []byte) error
	}
)

func NewPublisher(logger logr.Logger, db notifier) *Publisher {
	return &Publisher{
		Logger: logger.WithValues("component", "publisher"),
		db:     db,
	}
}

// Publish an event. If the context carries a transaction then the event is
// delivered only once the transaction commits.
func (p *Publisher) Publish(ctx context.Context, typ EventType, workspaceID resource.ID, properties any) error {
	event, err := NewEvent(typ, workspaceID, properties)
	if err != nil {
		return fmt.Errorf("constructing event: %w", err)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := p.db.Notify(ctx, sql.EventsChannel, payload); err != nil {
		p.Error(err, "publishing event", "event", event)
		return err
	}
	eventsPublished.WithLabelValues(string(typ)).Inc()
	p.V(9).Info("published event", "event", event)
	return nil
}
