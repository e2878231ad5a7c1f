package logr

import (
	"bytes"
	"errors"
	"testing"

	"log/slog"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name string
		min  slog.Leveler
		log  func(logger logr.Logger)
		want string
	}{
		{
			"info",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.Info("connected repo", "app", "app-123")
			},
			"level=INFO msg=\"connected repo\" app=app-123\n",
		},
		{
			"error",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.Error(errors.New("woops"), "extracting issues", "record", "1")
			},
			"level=ERROR msg=\"extracting issues\" error=woops record=1\n",
		},
		{
			"debug",
			slog.LevelDebug,
			func(logger logr.Logger) {
				logger.V(1).Info("retrieved update", "id", "upd-1")
			},
			"level=DEBUG msg=\"retrieved update\" id=upd-1\n",
		},
		{
			"more verbose than debug",
			slog.Level(-5),
			func(logger logr.Logger) {
				logger.V(2).Info("listed updates")
			},
			"level=DEBUG-1 msg=\"listed updates\"\n",
		},
		{
			"hide debug",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.V(1).Info("should not see this")
			},
			"",
		},
		{
			"with values",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.WithValues("component", "broker").Info("listening")
			},
			"level=INFO msg=listening component=broker\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bytes.Buffer
			logger := logr.New(newLogSink(slog.NewTextHandler(&got, newTestOptions(tt.min))))
			tt.log(logger)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{Format: "yaml"})
	require.Error(t, err)

	logger, err := New(Config{Format: string(JSONFormat), Verbosity: 2})
	require.NoError(t, err)
	assert.Equal(t, JSONFormat, logger.Format)
	assert.Equal(t, JSONFormat, logger.V(1).Format)
}

func newTestOptions(min slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: min,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time.
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}
}
