package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
)

type (
	// Broker dispatches events received from postgres to the handlers
	// subscribed to each event type. Handlers are invoked with a system actor
	// scoped to the event's workspace.
	Broker struct {
		logr.Logger

		source   source
		handlers map[EventType][]namedHandler
		mu       sync.Mutex // sync access to map
	}

	// Handler handles an event.
	Handler func(ctx context.Context, event Event) error

	namedHandler struct {
		name string
		fn   Handler
	}

	// source is a source of raw event payloads.
	source interface {
		Subscribe(ctx context.Context) (<-chan []byte, func())
	}
)

func NewBroker(logger logr.Logger, source source) *Broker {
	return &Broker{
		Logger:   logger.WithValues("component", "broker"),
		source:   source,
		handlers: make(map[EventType][]namedHandler),
	}
}

// Subscribe registers a named handler for an event type. Handlers should be
// registered before the broker is started.
func (b *Broker) Subscribe(typ EventType, name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[typ] = append(b.handlers[typ], namedHandler{name: name, fn: fn})
}

// Subscribe registers a handler that receives event properties decoded into T.
func Subscribe[T any](b *Broker, typ EventType, name string, fn func(ctx context.Context, props T) error) {
	b.Subscribe(typ, name, func(ctx context.Context, event Event) error {
		var props T
		if err := json.Unmarshal(event.Properties, &props); err != nil {
			return fmt.Errorf("decoding %s properties: %w", event.Type, err)
		}
		return fn(ctx, props)
	})
}

// Start receiving events and dispatching them to handlers. It returns when
// the context is canceled or the source terminates the subscription.
func (b *Broker) Start(ctx context.Context) error {
	sub, unsub := b.source.Subscribe(ctx)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-sub:
			if !ok {
				return ErrSubscriptionTerminated
			}
			b.receive(ctx, payload)
		}
	}
}

// receive decodes a payload into an event and dispatches it.
func (b *Broker) receive(ctx context.Context, payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		b.Error(err, "decoding event")
		return
	}
	b.Dispatch(ctx, event)
}

// Dispatch invokes every handler subscribed to the event's type. A failing
// handler is logged and does not prevent other handlers from running.
func (b *Broker) Dispatch(ctx context.Context, event Event) {
	b.mu.Lock()
	handlers := b.handlers[event.Type]
	b.mu.Unlock()

	ctx = authz.WithActor(ctx, &authz.System{WorkspaceID: event.WorkspaceID})
	for _, h := range handlers {
		if err := h.fn(ctx, event); err != nil {
			handlerErrors.WithLabelValues(string(event.Type), h.name).Inc()
			b.Error(err, "handling event", "handler", h.name, "event", event)
			continue
		}
		eventsHandled.WithLabelValues(string(event.Type), h.name).Inc()
		b.V(9).Info("handled event", "handler", h.name, "event", event)
	}
}
