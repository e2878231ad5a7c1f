package issue

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leg100/console/internal/inmem"
	"github.com/leg100/console/internal/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	mu        sync.Mutex
	extracted []string
	// fail extraction of these log groups
	fail map[string]bool
	// block extraction until closed
	block chan struct{}
}

func (f *fakeExtractor) Extract(_ context.Context, data *LogsData) error {
	if f.block != nil {
		<-f.block
	}
	if f.fail[data.LogGroup] {
		return errors.New("extraction failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extracted = append(f.extracted, data.LogGroup)
	return nil
}

func gzipJSON(t *testing.T, data LogsData) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	require.NoError(t, json.NewEncoder(zw).Encode(data))
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func failedIDs(resp BatchResponse) []string {
	ids := make([]string, len(resp.BatchItemFailures))
	for i, f := range resp.BatchItemFailures {
		ids[i] = f.ItemIdentifier
	}
	return ids
}

func TestSubscriber(t *testing.T) {
	now := time.Date(2023, 8, 1, 12, 0, 0, 0, time.UTC)
	data := func(logGroup string) []byte {
		return gzipJSON(t, LogsData{MessageType: DataMessage, LogGroup: logGroup})
	}

	t.Run("process records", func(t *testing.T) {
		ext := &fakeExtractor{fail: map[string]bool{"/aws/lambda/broken": true}}
		sub := NewSubscriber(ext, SubscriberOptions{Logger: logr.Discard()})
		sub.now = func() time.Time { return now }

		resp := sub.Process(t.Context(), []Record{
			{ID: "1", ArrivalTime: now.Add(-time.Minute), Data: data("/aws/lambda/api")},
			{ID: "2", ArrivalTime: now.Add(-2 * time.Hour), Data: data("/aws/lambda/old")},
			{ID: "3", ArrivalTime: now, Data: gzipJSON(t, LogsData{MessageType: "CONTROL_MESSAGE"})},
			{ID: "4", ArrivalTime: now, Data: data("/aws/lambda/broken")},
			{ID: "5", ArrivalTime: now, Data: []byte("not gzip")},
		})

		assert.Equal(t, []string{"4", "5"}, failedIDs(resp))
		assert.Equal(t, []string{"/aws/lambda/api"}, ext.extracted)
	})

	t.Run("empty batch", func(t *testing.T) {
		sub := NewSubscriber(&fakeExtractor{}, SubscriberOptions{Logger: logr.Discard()})

		resp := sub.Process(t.Context(), nil)
		assert.NotNil(t, resp.BatchItemFailures)
		assert.Empty(t, resp.BatchItemFailures)
	})

	t.Run("records not started before deadline are failed", func(t *testing.T) {
		ext := &fakeExtractor{block: make(chan struct{})}
		sub := NewSubscriber(ext, SubscriberOptions{
			Logger:      logr.Discard(),
			Concurrency: 1,
			Deadline:    50 * time.Millisecond,
		})
		sub.now = func() time.Time { return now }
		time.AfterFunc(100*time.Millisecond, func() { close(ext.block) })

		resp := sub.Process(t.Context(), []Record{
			{ID: "1", ArrivalTime: now, Data: data("/aws/lambda/api")},
			{ID: "2", ArrivalTime: now, Data: data("/aws/lambda/api")},
			{ID: "3", ArrivalTime: now, Data: data("/aws/lambda/api")},
		})

		// the first record was in flight at the deadline and allowed to
		// finish
		assert.Equal(t, []string{"2", "3"}, failedIDs(resp))
		assert.Len(t, ext.extracted, 1)
	})

	t.Run("skip duplicates", func(t *testing.T) {
		cache, err := inmem.NewCache(inmem.CacheConfig{TTL: time.Minute})
		require.NoError(t, err)
		ext := &fakeExtractor{}
		sub := NewSubscriber(ext, SubscriberOptions{Logger: logr.Discard(), Seen: cache})
		sub.now = func() time.Time { return now }

		records := []Record{{ID: "1", ArrivalTime: now, Data: data("/aws/lambda/api")}}
		assert.Empty(t, sub.Process(t.Context(), records).BatchItemFailures)
		assert.Empty(t, sub.Process(t.Context(), records).BatchItemFailures)

		assert.Len(t, ext.extracted, 1)
	})

	t.Run("retry failed record", func(t *testing.T) {
		cache, err := inmem.NewCache(inmem.CacheConfig{TTL: time.Minute})
		require.NoError(t, err)
		ext := &fakeExtractor{fail: map[string]bool{"/aws/lambda/api": true}}
		sub := NewSubscriber(ext, SubscriberOptions{Logger: logr.Discard(), Seen: cache})
		sub.now = func() time.Time { return now }

		records := []Record{{ID: "1", ArrivalTime: now, Data: data("/aws/lambda/api")}}
		assert.Equal(t, []string{"1"}, failedIDs(sub.Process(t.Context(), records)))

		// a failed record is not marked as seen
		ext.fail = nil
		assert.Empty(t, sub.Process(t.Context(), records).BatchItemFailures)
		assert.Len(t, ext.extracted, 1)
	})
}
