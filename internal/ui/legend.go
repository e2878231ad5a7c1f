package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/leg100/console/internal/state"
)

// legendBudget is the width in pixels shared by the tags of a legend.
const legendBudget = 100

type (
	// legend summarises the resources changed by an update as a bar of
	// tags, one per action, each sized in proportion to its count.
	legend struct {
		Tags []legendTag
	}

	legendTag struct {
		Action state.Action
		Count  int
		Width  int
		Title  string
	}
)

// tag order in which they are presented
var legendOrder = []state.Action{
	state.CreatedAction,
	state.DeletedAction,
	state.UpdatedAction,
	state.SameAction,
}

var legendVerbs = map[state.Action]string{
	state.CreatedAction: "added",
	state.DeletedAction: "deleted",
	state.UpdatedAction: "updated",
	state.SameAction:    "unchanged",
}

func newLegend(counts state.Counts) legend {
	byAction := map[state.Action]int{
		state.CreatedAction: counts.Created,
		state.DeletedAction: counts.Deleted,
		state.UpdatedAction: counts.Updated,
		state.SameAction:    counts.Same,
	}
	widths := legendWidths(counts)
	var l legend
	for _, action := range legendOrder {
		n := byAction[action]
		if n == 0 {
			continue
		}
		l.Tags = append(l.Tags, legendTag{
			Action: action,
			Count:  n,
			Width:  widths[action],
			Title:  fmt.Sprintf("%s %s", state.CountCopy(n), legendVerbs[action]),
		})
	}
	return l
}

// Empty is true if the update changed no resources.
func (l legend) Empty() bool { return len(l.Tags) == 0 }

// legendWidths apportions the legend budget between the actions. Each width
// is rounded up to a multiple of 4 and the widest bucket absorbs the
// difference between the sum and the budget. Ties for widest go to the
// first in the order: same, created, updated, deleted.
func legendWidths(counts state.Counts) map[state.Action]int {
	total := counts.Total()
	if total == 0 {
		return nil
	}
	buckets := []struct {
		action state.Action
		count  int
	}{
		{state.SameAction, counts.Same},
		{state.CreatedAction, counts.Created},
		{state.UpdatedAction, counts.Updated},
		{state.DeletedAction, counts.Deleted},
	}
	widths := make(map[state.Action]int, len(buckets))
	var (
		sum     int
		largest = buckets[0].action
	)
	for _, b := range buckets {
		// ceil(count/total*100/4)*4, in integer arithmetic
		w := (b.count*legendBudget/4 + total - 1) / total * 4
		widths[b.action] = w
		sum += w
		if w > widths[largest] {
			largest = b.action
		}
	}
	widths[largest] += legendBudget - sum
	return widths
}

// legendComponent renders the legend of an update's resource counts.
func legendComponent(counts state.Counts) templ.Component {
	l := newLegend(counts)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if l.Empty() {
			_, err := io.WriteString(w, `<span class="legend-empty">No changes</span>`)
			return err
		}
		if _, err := io.WriteString(w, `<div class="legend">`); err != nil {
			return err
		}
		for _, tag := range l.Tags {
			_, err := fmt.Fprintf(w, `<span class="legend-tag legend-%s" style="width: %dpx" title="%s"></span>`,
				tag.Action, tag.Width, templ.EscapeString(tag.Title))
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
