package issue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leg100/console/internal/logr"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultBatchSize   = 100
	DefaultMaxAttempts = 3
	pollTimeout        = 250 * time.Millisecond
)

type (
	// Consumer reads log stream records from kafka and feeds them to the
	// subscriber in batches. Records the subscriber fails are retried in
	// subsequent batches before being given up on.
	Consumer struct {
		logr.Logger

		reader      messageReader
		processor   batchProcessor
		batchSize   int
		maxAttempts int

		// pending records failed and await another attempt.
		pending []kafka.Message
		// held records are complete but sit behind a pending record on
		// the same partition, so committing them would skip it.
		held     []kafka.Message
		attempts map[string]int
	}

	partition struct {
		topic string
		id    int
	}

	ConsumerOptions struct {
		Brokers []string
		Topic   string
		GroupID string
		// BatchSize is the maximum number of records per batch.
		BatchSize int
		// MaxAttempts is the number of times a record is processed before
		// it is given up on.
		MaxAttempts int
	}

	messageReader interface {
		FetchMessage(ctx context.Context) (kafka.Message, error)
		CommitMessages(ctx context.Context, msgs ...kafka.Message) error
		Close() error
	}

	batchProcessor interface {
		Process(ctx context.Context, records []Record) BatchResponse
	}
)

func NewConsumer(logger logr.Logger, processor batchProcessor, opts ConsumerOptions) (*Consumer, error) {
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("log stream consumer requires at least one broker")
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("log stream consumer requires a topic")
	}
	if opts.GroupID == "" {
		return nil, fmt.Errorf("log stream consumer requires a group id")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  opts.Brokers,
		GroupID:  opts.GroupID,
		Topic:    opts.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	return newConsumer(logger, processor, reader, opts), nil
}

func newConsumer(logger logr.Logger, processor batchProcessor, reader messageReader, opts ConsumerOptions) *Consumer {
	c := &Consumer{
		Logger:      logger.WithValues("component", "log-stream-consumer"),
		reader:      reader,
		processor:   processor,
		batchSize:   opts.BatchSize,
		maxAttempts: opts.MaxAttempts,
		attempts:    make(map[string]int),
	}
	if c.batchSize <= 0 {
		c.batchSize = DefaultBatchSize
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	return c
}

// Start consuming records until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	defer c.reader.Close()

	c.V(1).Info("consuming log stream")
	for {
		msgs, err := c.poll(ctx, c.batchSize-len(c.pending))
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("polling log stream: %w", err)
		}
		batch := make([]kafka.Message, 0, len(c.pending)+len(msgs))
		batch = append(batch, c.pending...)
		batch = append(batch, msgs...)
		c.pending = nil
		if len(batch) == 0 {
			continue
		}
		if err := c.handle(ctx, batch); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// poll fetches up to max messages, returning early once no message arrives
// within the poll timeout.
func (c *Consumer) poll(ctx context.Context, max int) ([]kafka.Message, error) {
	if max <= 0 {
		max = 1
	}
	out := make([]kafka.Message, 0, max)
	for range max {
		fetchCtx, cancel := context.WithTimeout(ctx, pollTimeout)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				return out, nil
			case errors.Is(err, context.Canceled):
				return out, ctx.Err()
			default:
				return out, err
			}
		}
		out = append(out, msg)
	}
	return out, nil
}

func (c *Consumer) handle(ctx context.Context, batch []kafka.Message) error {
	records := make([]Record, len(batch))
	for i, msg := range batch {
		records[i] = Record{
			ID:          messageID(msg),
			ArrivalTime: msg.Time,
			Data:        msg.Value,
		}
	}
	resp := c.processor.Process(ctx, records)

	failed := make(map[string]bool, len(resp.BatchItemFailures))
	for _, f := range resp.BatchItemFailures {
		failed[f.ItemIdentifier] = true
	}
	for _, msg := range batch {
		id := messageID(msg)
		if failed[id] {
			c.attempts[id]++
			if c.attempts[id] < c.maxAttempts {
				c.pending = append(c.pending, msg)
				continue
			}
			c.Error(fmt.Errorf("failed %d times", c.attempts[id]), "giving up on record", "record_id", id)
		}
		delete(c.attempts, id)
		c.held = append(c.held, msg)
	}
	commit := c.committable()
	if len(commit) == 0 {
		return nil
	}
	if err := c.reader.CommitMessages(ctx, commit...); err != nil {
		return fmt.Errorf("committing records: %w", err)
	}
	c.V(2).Info("committed records", "count", len(commit), "retrying", len(c.pending), "held", len(c.held))
	return nil
}

// committable removes and returns the held records that precede every
// pending record on their partition. A group's committed offset is the
// next one to read, so committing past a pending record would lose it on
// restart.
func (c *Consumer) committable() []kafka.Message {
	lowest := make(map[partition]int64)
	for _, msg := range c.pending {
		p := partition{msg.Topic, msg.Partition}
		if o, ok := lowest[p]; !ok || msg.Offset < o {
			lowest[p] = msg.Offset
		}
	}
	var commit, held []kafka.Message
	for _, msg := range c.held {
		if o, ok := lowest[partition{msg.Topic, msg.Partition}]; ok && msg.Offset > o {
			held = append(held, msg)
			continue
		}
		commit = append(commit, msg)
	}
	c.held = held
	return commit
}

func messageID(msg kafka.Message) string {
	return fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
}
