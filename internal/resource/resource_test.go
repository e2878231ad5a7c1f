package resource

import (
	"testing"

	"github.com/leg100/console/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name         string
		resourceName *string
		want         error
	}{
		{"nil", nil, internal.ErrRequiredName},
		{"dot", new("."), internal.ErrInvalidName},
		{"underscore", new("_"), nil},
		{"my-app", new("my-app"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.resourceName)
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestID(t *testing.T) {
	id := NewID(StageKind)
	assert.Regexp(t, `^stage-[1-9A-HJ-NP-Za-km-z]{16}$`, id.String())

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("stage-tooshort")
	assert.ErrorIs(t, err, internal.ErrInvalidID)

	var scanned ID
	require.NoError(t, scanned.Scan(id.String()))
	assert.Equal(t, id, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	value, err := EmptyID.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}
