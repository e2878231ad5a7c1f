package issue

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leg100/console/internal/logr"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 5
	DefaultDeadline    = 60 * time.Second
	DefaultMaxAge      = time.Hour
)

type (
	// Subscriber processes batches of log stream records, extracting issues
	// from each.
	Subscriber struct {
		logr.Logger

		extractor   extractor
		seen        seenCache
		concurrency int
		deadline    time.Duration
		maxAge      time.Duration
		now         func() time.Time
	}

	SubscriberOptions struct {
		logr.Logger

		// Seen skips records already processed. Optional.
		Seen seenCache
		// Concurrency is the number of records processed at once.
		Concurrency int
		// Deadline after which no more records in a batch are started.
		// Records still in progress are allowed to finish.
		Deadline time.Duration
		// MaxAge of a record, after which it is dropped unprocessed.
		MaxAge time.Duration
	}

	// Record is a single record from a log stream.
	Record struct {
		ID          string
		ArrivalTime time.Time
		// Data is gzipped JSON encoding of LogsData.
		Data []byte
	}

	// BatchResponse lists the records that should be retried.
	BatchResponse struct {
		BatchItemFailures []ItemFailure `json:"batchItemFailures"`
	}

	ItemFailure struct {
		ItemIdentifier string `json:"itemIdentifier"`
	}

	extractor interface {
		Extract(ctx context.Context, data *LogsData) error
	}

	seenCache interface {
		Seen(ctx context.Context, key string) (bool, error)
		Mark(ctx context.Context, key string) error
	}
)

func NewSubscriber(ext extractor, opts SubscriberOptions) *Subscriber {
	s := &Subscriber{
		Logger:      opts.Logger.WithValues("component", "subscriber"),
		extractor:   ext,
		seen:        opts.Seen,
		concurrency: opts.Concurrency,
		deadline:    opts.Deadline,
		maxAge:      opts.MaxAge,
		now:         time.Now,
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if s.deadline <= 0 {
		s.deadline = DefaultDeadline
	}
	if s.maxAge <= 0 {
		s.maxAge = DefaultMaxAge
	}
	return s
}

// Process a batch of records, returning those that did not complete, either
// because they errored or because they were not started before the deadline.
func (s *Subscriber) Process(ctx context.Context, records []Record) BatchResponse {
	start := s.now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	s.V(2).Info("processing batch", "records", len(records))

	deadline, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	started := make([]bool, len(records))
	completed := make([]bool, len(records))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, rec := range records {
		if deadline.Err() != nil {
			break
		}
		g.Go(func() error {
			if deadline.Err() != nil {
				return nil
			}
			started[i] = true
			// in-flight records use the parent context so that they
			// may finish after the deadline.
			if err := s.process(ctx, rec); err != nil {
				s.Error(err, "processing record", "record_id", rec.ID)
				recordsProcessed.WithLabelValues(resultFailed).Inc()
				return nil
			}
			completed[i] = true
			return nil
		})
	}
	// errors are logged and recorded as failures rather than returned
	_ = g.Wait()

	resp := BatchResponse{BatchItemFailures: []ItemFailure{}}
	for i, rec := range records {
		if !started[i] {
			recordsProcessed.WithLabelValues(resultTimedOut).Inc()
		}
		if !completed[i] {
			resp.BatchItemFailures = append(resp.BatchItemFailures, ItemFailure{ItemIdentifier: rec.ID})
		}
	}
	if incomplete := len(resp.BatchItemFailures); incomplete > 0 {
		s.V(1).Info("batch incomplete", "records", len(records), "incomplete", incomplete)
	}
	return resp
}

func (s *Subscriber) process(ctx context.Context, rec Record) error {
	if age := s.now().Sub(rec.ArrivalTime); age > s.maxAge {
		s.V(1).Info("dropping expired record", "record_id", rec.ID, "age", age)
		recordsProcessed.WithLabelValues(resultExpired).Inc()
		return nil
	}
	if s.seen != nil {
		seen, err := s.seen.Seen(ctx, rec.ID)
		if err != nil {
			s.Error(err, "checking for duplicate record", "record_id", rec.ID)
		} else if seen {
			s.V(2).Info("skipping duplicate record", "record_id", rec.ID)
			recordsProcessed.WithLabelValues(resultDuplicate).Inc()
			return nil
		}
	}
	data, err := decodeRecord(rec.Data)
	if err != nil {
		return err
	}
	if data.MessageType != DataMessage {
		recordsProcessed.WithLabelValues(resultSkipped).Inc()
		return nil
	}
	if err := s.extractor.Extract(ctx, data); err != nil {
		return fmt.Errorf("extracting issues: %w", err)
	}
	if s.seen != nil {
		if err := s.seen.Mark(ctx, rec.ID); err != nil {
			s.Error(err, "marking record as seen", "record_id", rec.ID)
		}
	}
	recordsProcessed.WithLabelValues(resultComplete).Inc()
	return nil
}

func decodeRecord(b []byte) (*LogsData, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decompressing record: %w", err)
	}
	defer zr.Close()

	var data LogsData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &data, nil
}
