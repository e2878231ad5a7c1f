package ui

import (
	"bytes"
	"context"
	"math/rand/v2"
	"testing"

	"github.com/leg100/console/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegendWidths(t *testing.T) {
	tests := []struct {
		name   string
		counts state.Counts
		want   map[state.Action]int
	}{
		{
			name:   "single bucket",
			counts: state.Counts{Created: 3},
			want: map[state.Action]int{
				state.SameAction: 0, state.CreatedAction: 100, state.UpdatedAction: 0, state.DeletedAction: 0,
			},
		},
		{
			name:   "even split",
			counts: state.Counts{Created: 1, Updated: 1, Deleted: 1, Same: 1},
			want: map[state.Action]int{
				state.SameAction: 16, state.CreatedAction: 28, state.UpdatedAction: 28, state.DeletedAction: 28,
			},
		},
		{
			name:   "thirds",
			counts: state.Counts{Created: 1, Updated: 1, Same: 1},
			want: map[state.Action]int{
				state.SameAction: 28, state.CreatedAction: 36, state.UpdatedAction: 36, state.DeletedAction: 0,
			},
		},
		{
			name:   "largest absorbs rounding",
			counts: state.Counts{Created: 1, Same: 99},
			want: map[state.Action]int{
				state.SameAction: 96, state.CreatedAction: 4, state.UpdatedAction: 0, state.DeletedAction: 0,
			},
		},
		{
			name:   "equal widths tie to first in order",
			counts: state.Counts{Same: 11, Created: 12, Updated: 7},
			want: map[state.Action]int{
				state.SameAction: 36, state.CreatedAction: 40, state.UpdatedAction: 24, state.DeletedAction: 0,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, legendWidths(tt.counts))
		})
	}
}

func TestLegendWidths_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 10000 {
		counts := state.Counts{
			Created: rng.IntN(50),
			Updated: rng.IntN(50),
			Deleted: rng.IntN(50),
			Same:    rng.IntN(500),
		}
		if counts.Total() == 0 {
			continue
		}
		var sum int
		for action, w := range legendWidths(counts) {
			require.GreaterOrEqual(t, w, 0, "%s width for %+v", action, counts)
			require.Zero(t, w%4, "%s width for %+v", action, counts)
			sum += w
		}
		require.Equal(t, legendBudget, sum, "counts: %+v", counts)
	}
}

func TestLegend(t *testing.T) {
	l := newLegend(state.Counts{Created: 1, Same: 3})
	require.Len(t, l.Tags, 2)
	assert.Equal(t, "1 resource added", l.Tags[0].Title)
	assert.Equal(t, "3 resources unchanged", l.Tags[1].Title)

	var buf bytes.Buffer
	require.NoError(t, legendComponent(state.Counts{}).Render(context.Background(), &buf))
	assert.Equal(t, `<span class="legend-empty">No changes</span>`, buf.String())
}
