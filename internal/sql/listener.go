package sql

import (
	"context"
	"fmt"
	"sync"

	"github.com/leg100/console/internal/logr"
)

// EventsChannel is the postgres notification channel on which console events
// are published.
const EventsChannel = "events"

// subscriberBufferSize is the number of notifications a subscriber can queue
// before it is forcibly unsubscribed.
const subscriberBufferSize = 100

// Listener listens for postgres notifications and forwards their payloads to
// subscribers.
type Listener struct {
	logr.Logger

	db          *DB           // pool from which to acquire a dedicated connection to postgres
	islistening chan struct{} // closed once the listener is listening

	subs map[chan []byte]struct{}
	mu   sync.Mutex // sync access to map
}

func NewListener(logger logr.Logger, db *DB) *Listener {
	return &Listener{
		Logger:      logger.WithValues("component", "listener"),
		db:          db,
		islistening: make(chan struct{}),
		subs:        make(map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel of notification payloads. The subscription is
// removed when the context is canceled or the returned func is called.
func (l *Listener) Subscribe(ctx context.Context) (<-chan []byte, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sub := make(chan []byte, subscriberBufferSize)
	l.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		l.unsubscribe(sub)
	}()

	return sub, func() { l.unsubscribe(sub) }
}

func (l *Listener) unsubscribe(sub chan []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.subs[sub]; !ok {
		// already unsubscribed
		return
	}
	close(sub)
	delete(l.subs, sub)
}

// Start listening for notifications from postgres. The channel returned by
// Started is closed once the listener is listening; from that point onwards
// published events are forwarded to subscribers.
func (l *Listener) Start(ctx context.Context) error {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("unable to acquire postgres connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+EventsChannel); err != nil {
		return err
	}
	l.V(2).Info("listening for events")
	close(l.islistening)

	defer func() {
		l.mu.Lock()
		subs := make([]chan []byte, 0, len(l.subs))
		for sub := range l.subs {
			subs = append(subs, sub)
		}
		l.mu.Unlock()
		for _, sub := range subs {
			l.unsubscribe(sub)
		}
	}()

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				// parent has decided to shutdown so exit without error
				return nil
			default:
				l.Error(err, "waiting for postgres notification")
				return err
			}
		}
		l.forward([]byte(notification.Payload))
	}
}

func (l *Listener) forward(payload []byte) {
	var full []chan []byte

	l.mu.Lock()
	for sub := range l.subs {
		select {
		case sub <- payload:
		default:
			full = append(full, sub)
		}
	}
	l.mu.Unlock()

	// forcibly unsubscribe full subscribers and leave it to them to
	// re-subscribe
	for _, sub := range full {
		l.Error(nil, "unsubscribing full subscriber", "queue_length", subscriberBufferSize)
		l.unsubscribe(sub)
	}
}

// Started returns a channel that is closed once the listener is listening.
func (l *Listener) Started() <-chan struct{} {
	return l.islistening
}
