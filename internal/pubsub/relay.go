package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/leg100/console/internal/logr"
)

type (
	// Relay forwards every event to an external sink so that systems outside
	// the console can react to deployments.
	Relay struct {
		logr.Logger

		source source
		sink   sink
	}

	// RelayOptions selects the sink. A URL with the gcppubsub scheme relays
	// to a Google Pub/Sub topic, e.g. gcppubsub://my-project/console-events.
	// Otherwise events are written to the kafka brokers and topic.
	RelayOptions struct {
		URL     string
		Brokers []string
		Topic   string
	}

	sink interface {
		send(ctx context.Context, event Event, payload []byte) error
		String() string
		Close() error
	}
)

func NewRelay(logger logr.Logger, source source, opts RelayOptions) (*Relay, error) {
	var (
		s   sink
		err error
	)
	if opts.URL != "" {
		u, perr := url.Parse(opts.URL)
		if perr != nil {
			return nil, fmt.Errorf("parsing relay url: %w", perr)
		}
		switch u.Scheme {
		case gcpPubSubScheme:
			s, err = newGCPSink(u)
		case kafkaScheme:
			s, err = newKafkaSink(kafkaOptionsFromURL(u))
		default:
			return nil, fmt.Errorf("unsupported relay url scheme: %q", u.Scheme)
		}
	} else {
		s, err = newKafkaSink(opts.Brokers, opts.Topic)
	}
	if err != nil {
		return nil, err
	}
	return &Relay{
		Logger: logger.WithValues("component", "relay"),
		source: source,
		sink:   s,
	}, nil
}

// Start relaying events until the context is canceled.
func (r *Relay) Start(ctx context.Context) error {
	sub, unsub := r.source.Subscribe(ctx)
	defer unsub()

	r.V(1).Info("relaying events", "sink", r.sink)
	for {
		select {
		case <-ctx.Done():
			return r.sink.Close()
		case payload, ok := <-sub:
			if !ok {
				return ErrSubscriptionTerminated
			}
			if err := r.relay(ctx, payload); err != nil {
				eventsRelayFailed.Inc()
				r.Error(err, "relaying event")
			}
		}
	}
}

func (r *Relay) relay(ctx context.Context, payload []byte) error {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}
	if err := r.sink.send(ctx, event, payload); err != nil {
		return err
	}
	eventsRelayed.Inc()
	r.V(9).Info("relayed event", "event", event)
	return nil
}
