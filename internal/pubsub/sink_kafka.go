package pubsub

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafka://<broker>/<topic>?brokers=<broker>,<broker>
const kafkaScheme = "kafka"

var (
	ErrKafkaRequiresBroker = errors.New("kafka relay requires at least one broker")
	ErrKafkaRequiresTopic  = errors.New("kafka relay requires a topic")
)

type (
	// kafkaSink writes events keyed by workspace so that each workspace's
	// events stay ordered within a partition.
	kafkaSink struct {
		writer messageWriter
		topic  string
	}

	messageWriter interface {
		WriteMessages(ctx context.Context, msgs ...kafka.Message) error
		Close() error
	}
)

func kafkaOptionsFromURL(u *url.URL) ([]string, string) {
	var brokers []string
	if u.Host != "" {
		brokers = append(brokers, u.Host)
	}
	for b := range strings.SplitSeq(u.Query().Get("brokers"), ",") {
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers, strings.TrimPrefix(u.Path, "/")
}

func newKafkaSink(brokers []string, topic string) (*kafkaSink, error) {
	if len(brokers) == 0 {
		return nil, ErrKafkaRequiresBroker
	}
	if topic == "" {
		return nil, ErrKafkaRequiresTopic
	}
	return &kafkaSink{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}, nil
}

func (s *kafkaSink) send(ctx context.Context, event Event, payload []byte) error {
	return s.writer.WriteMessages(ctx, kafka.Message{
		Topic: s.topic,
		Key:   []byte(event.WorkspaceID.String()),
		Value: payload,
		Time:  event.Time,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

func (s *kafkaSink) String() string { return "kafka:" + s.topic }

func (s *kafkaSink) Close() error { return s.writer.Close() }
