package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	fakeSource struct {
		ch chan []byte
	}

	fakeNotifier struct {
		channel string
		payload []byte
	}

	fakeWriter struct {
		msgs []kafka.Message
	}
)

func (f *fakeSource) Subscribe(context.Context) (<-chan []byte, func()) {
	return f.ch, func() {}
}

func (f *fakeNotifier) Notify(_ context.Context, channel string, payload []byte) error {
	f.channel = channel
	f.payload = payload
	return nil
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type runStarted struct {
	RunID string `json:"run_id"`
}

func TestPublisher(t *testing.T) {
	notifier := &fakeNotifier{}
	pub := NewPublisher(logr.Discard(), notifier)
	wsID := resource.NewID(resource.WorkspaceKind)

	err := pub.Publish(context.Background(), RunStartedEvent, wsID, runStarted{RunID: "run-123"})
	require.NoError(t, err)

	assert.Equal(t, "events", notifier.channel)
	var got Event
	require.NoError(t, json.Unmarshal(notifier.payload, &got))
	assert.Equal(t, RunStartedEvent, got.Type)
	assert.Equal(t, wsID, got.WorkspaceID)
	assert.JSONEq(t, `{"run_id":"run-123"}`, string(got.Properties))
}

func TestBroker(t *testing.T) {
	wsID := resource.NewID(resource.WorkspaceKind)
	src := &fakeSource{ch: make(chan []byte, 1)}
	broker := NewBroker(logr.Discard(), src)

	got := make(chan string, 1)
	Subscribe(broker, RunStartedEvent, "test", func(ctx context.Context, props runStarted) error {
		// handler should be invoked with a system actor for the workspace.
		actorWorkspace, err := authz.WorkspaceID(ctx)
		assert.NoError(t, err)
		assert.Equal(t, wsID, actorWorkspace)

		got <- props.RunID
		return nil
	})

	event, err := NewEvent(RunStartedEvent, wsID, runStarted{RunID: "run-123"})
	require.NoError(t, err)
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	src.ch <- payload

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- broker.Start(ctx) }()

	assert.Equal(t, "run-123", <-got)

	close(src.ch)
	assert.ErrorIs(t, <-done, ErrSubscriptionTerminated)
	cancel()
}

func TestBroker_HandlerError(t *testing.T) {
	broker := NewBroker(logr.Discard(), &fakeSource{})

	var calls int
	broker.Subscribe(RunCreatedEvent, "failing", func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	broker.Subscribe(RunCreatedEvent, "succeeding", func(context.Context, Event) error {
		calls++
		return nil
	})
	broker.Subscribe(RunStartedEvent, "other", func(context.Context, Event) error {
		t.Fatal("unexpected invocation")
		return nil
	})

	broker.Dispatch(context.Background(), Event{Type: RunCreatedEvent})
	assert.Equal(t, 2, calls)
}

func TestRelay(t *testing.T) {
	wsID := resource.NewID(resource.WorkspaceKind)
	writer := &fakeWriter{}
	relay := &Relay{
		Logger: logr.Discard(),
		sink:   &kafkaSink{writer: writer, topic: "console-events"},
	}

	event, err := NewEvent(StateUpdateCompletedEvent, wsID, map[string]string{"update_id": "upd-123"})
	require.NoError(t, err)
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, relay.relay(context.Background(), payload))

	require.Len(t, writer.msgs, 1)
	assert.Equal(t, "console-events", writer.msgs[0].Topic)
	assert.Equal(t, wsID.String(), string(writer.msgs[0].Key))
	assert.Equal(t, payload, writer.msgs[0].Value)
	assert.Equal(t, "state.update.completed", string(writer.msgs[0].Headers[0].Value))

	t.Run("malformed payload", func(t *testing.T) {
		assert.Error(t, relay.relay(context.Background(), []byte("{")))
		assert.Len(t, writer.msgs, 1)
	})
}

func TestNewRelay_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts RelayOptions
		want error
	}{
		{"missing brokers", RelayOptions{Topic: "events"}, ErrKafkaRequiresBroker},
		{"missing topic", RelayOptions{Brokers: []string{"localhost:9092"}}, ErrKafkaRequiresTopic},
		{"kafka url without topic", RelayOptions{URL: "kafka://localhost:9092"}, ErrKafkaRequiresTopic},
		{"invalid gcp project", RelayOptions{URL: "gcppubsub://x/events"}, ErrInvalidGoogleProjectID},
		{"invalid gcp topic", RelayOptions{URL: "gcppubsub://my-project/1"}, ErrInvalidGooglePubSubTopic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRelay(logr.Discard(), &fakeSource{}, tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := NewRelay(logr.Discard(), &fakeSource{}, RelayOptions{URL: "amqp://localhost/events"})
		assert.Error(t, err)
	})
}

func TestKafkaSink_URL(t *testing.T) {
	relay, err := NewRelay(logr.Discard(), &fakeSource{}, RelayOptions{URL: "kafka://broker1:9092/console-events?brokers=broker2:9092"})
	require.NoError(t, err)
	assert.Equal(t, "kafka:console-events", relay.sink.String())

	brokers, topic := kafkaOptionsFromURL(mustParseURL(t, "kafka://broker1:9092/console-events?brokers=broker2:9092,broker3:9092"))
	assert.Equal(t, []string{"broker1:9092", "broker2:9092", "broker3:9092"}, brokers)
	assert.Equal(t, "console-events", topic)
}

func mustParseURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}
