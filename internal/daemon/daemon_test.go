package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaemon_MissingSecretError(t *testing.T) {
	var missing *internal.ErrMissingParameter
	_, err := New(context.Background(), logr.Discard(), Config{})
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "webhook-secret", missing.Parameter)
}

func TestConfig_Valid(t *testing.T) {
	valid := func() Config {
		cfg := NewConfig()
		cfg.WebhookSecret = "s3cr3t"
		return cfg
	}

	t.Run("defaults", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Valid())
		assert.False(t, cfg.relayEnabled())
	})

	t.Run("log stream without brokers", func(t *testing.T) {
		cfg := valid()
		cfg.LogStream.Topic = "function-logs"
		assert.ErrorIs(t, cfg.Valid(), ErrLogStreamRequiresBroker)
	})

	t.Run("log stream without group", func(t *testing.T) {
		cfg := valid()
		cfg.LogStream.Topic = "function-logs"
		cfg.LogStream.Brokers = []string{"localhost:9092"}
		cfg.LogStream.GroupID = ""
		assert.ErrorIs(t, cfg.Valid(), ErrLogStreamRequiresGroup)
	})

	t.Run("relay enabled by url", func(t *testing.T) {
		cfg := valid()
		cfg.Relay.URL = "kafka://localhost:9092/console-events"
		assert.True(t, cfg.relayEnabled())
	})
}
