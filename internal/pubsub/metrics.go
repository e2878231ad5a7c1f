package pubsub

import "github.com/prometheus/client_golang/prometheus"

func init() {
	prometheus.MustRegister(eventsPublished, eventsHandled, handlerErrors, eventsRelayed, eventsRelayFailed)
}

var (
	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "pubsub",
		Name:      "events_published_total",
		Help:      "Total events published by type",
	}, []string{"type"})

	eventsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "pubsub",
		Name:      "events_handled_total",
		Help:      "Total events successfully handled by type and handler",
	}, []string{"type", "handler"})

	handlerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "pubsub",
		Name:      "handler_errors_total",
		Help:      "Total errors returned by event handlers by type and handler",
	}, []string{"type", "handler"})

	eventsRelayed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "pubsub",
		Name:      "events_relayed_total",
		Help:      "Total events relayed to the external sink",
	})

	eventsRelayFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "pubsub",
		Name:      "events_relay_failures_total",
		Help:      "Total events that could not be relayed",
	})
)
