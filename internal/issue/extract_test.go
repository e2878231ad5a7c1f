package issue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEvent(t *testing.T) {
	ts := time.Date(2023, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		message string
		want    occurrence
		found   bool
	}{
		{
			name:    "node invoke error",
			message: "2023-08-01T12:00:00.000Z\t4b4c9f2e\tERROR\tInvoke Error \t{\"errorType\":\"TypeError\",\"errorMessage\":\"Cannot read properties of undefined\",\"stack\":[\"TypeError: Cannot read\"]}\n",
			want:    occurrence{Error: "TypeError", Message: "Cannot read properties of undefined", Time: ts},
			found:   true,
		},
		{
			name:    "node uncaught exception without type",
			message: "2023-08-01T12:00:00.000Z\t4b4c9f2e\tERROR\tUncaught Exception \t{\"errorMessage\":\"boom\"}",
			want:    occurrence{Error: "Error", Message: "boom", Time: ts},
			found:   true,
		},
		{
			name:    "timeout",
			message: "2023-08-01T12:00:00.000Z 4b4c9f2e Task timed out after 3.00 seconds\n",
			want:    occurrence{Error: "TimeoutError", Message: "Task timed out after 3.00 seconds", Time: ts},
			found:   true,
		},
		{
			name:    "error line with type",
			message: "[ERROR]\t2023-08-01T12:00:00.000Z\t4b4c9f2e\tValueError: invalid literal\nTraceback (most recent call last):\n  File \"handler.py\"",
			want:    occurrence{Error: "ValueError", Message: "invalid literal\nTraceback (most recent call last):\n  File \"handler.py\"", Time: ts},
			found:   true,
		},
		{
			name:    "error line without type",
			message: "[ERROR] something went badly wrong",
			want:    occurrence{Error: "Error", Message: "something went badly wrong", Time: ts},
			found:   true,
		},
		{
			name:    "info line",
			message: "2023-08-01T12:00:00.000Z\t4b4c9f2e\tINFO\tprocessed 3 items",
		},
		{
			name:    "invoke error with malformed json",
			message: "2023-08-01T12:00:00.000Z\t4b4c9f2e\tERROR\tInvoke Error \t{not json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := parseEvent(LogEvent{ID: "1", Timestamp: ts.UnixMilli(), Message: tt.message})
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := fingerprint("ValueError", "invalid literal\nTraceback one")
	b := fingerprint("ValueError", "invalid literal\nTraceback two")
	assert.Equal(t, a, b, "only the first line of the message should count")

	assert.NotEqual(t, a, fingerprint("TypeError", "invalid literal"))
	assert.NotEqual(t, a, fingerprint("ValueError", "another message"))
}
