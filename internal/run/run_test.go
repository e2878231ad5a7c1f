package run

import (
	"testing"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Status(t *testing.T) {
	now := internal.CurrentTimestamp()

	tests := []struct {
		name string
		run  Run
		want Status
	}{
		{"queued", Run{}, StatusQueued},
		{"running", Run{TimeStarted: &now}, StatusRunning},
		{"succeeded", Run{TimeStarted: &now, TimeCompleted: &now}, StatusSucceeded},
		{"errored", Run{TimeStarted: &now, TimeCompleted: &now, Error: new("boom")}, StatusErrored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.run.Status())
		})
	}
}

func TestTrigger(t *testing.T) {
	trigger := Trigger{
		Source: "github",
		Repo:   TriggerRepo{ID: 123, Owner: "sst", Repo: "console"},
		Branch: "main",
		Commit: TriggerCommit{ID: "0123456789abcdef", Message: "fix things"},
		Sender: TriggerSender{ID: 42, Username: "bob"},
	}
	assert.Equal(t, "0123456", trigger.ShortSHA())
	assert.Equal(t, "https://avatars.githubusercontent.com/u/42?s=48&v=4", trigger.AvatarURL())

	t.Run("short sha of short id", func(t *testing.T) {
		assert.Equal(t, "abc", Trigger{Commit: TriggerCommit{ID: "abc"}}.ShortSHA())
	})
}

func TestNewChunk(t *testing.T) {
	runID := resource.NewID(resource.RunKind)

	_, err := newChunk(AppendLogsOptions{RunID: runID})
	assert.Error(t, err)

	_, err = newChunk(AppendLogsOptions{RunID: runID, Offset: -1, Data: []byte("x")})
	assert.Error(t, err)

	chunk, err := newChunk(AppendLogsOptions{RunID: runID, Offset: 5, Data: []byte("hello")})
	require.NoError(t, err)
	assert.Equal(t, Chunk{RunID: runID, Offset: 5, Data: []byte("hello")}, chunk)
}

func TestRenderLogs(t *testing.T) {
	got := RenderLogs([]byte("\x1b[31mfailed\x1b[0m"))
	assert.Contains(t, string(got), `<span class="term-fg31">failed</span>`)
}
