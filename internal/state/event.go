package state

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
)

const (
	CreatedAction Action = "created"
	UpdatedAction Action = "updated"
	DeletedAction Action = "deleted"
	SameAction    Action = "same"
)

type (
	// Action taken on a resource by an update.
	Action string

	// ResourceEvent records the action an update took on a resource.
	ResourceEvent struct {
		ID          resource.ID `db:"state_event_id"`
		WorkspaceID resource.ID `db:"workspace_id"`
		StageID     resource.ID `db:"stage_id"`
		UpdateID    resource.ID `db:"update_id"`
		URN         string      `db:"urn"`
		Type        string      `db:"type"`
		Action      Action      `db:"action"`
		TimeCreated time.Time   `db:"time_created"`
	}

	ResourceEventOptions struct {
		URN    string `json:"urn"`
		Type   string `json:"type"`
		Action Action `json:"action"`
	}

	// Changes are an update's resource events grouped by action, in the order
	// in which they are presented.
	Changes struct {
		Removed []*ResourceEvent
		Added   []*ResourceEvent
		Updated []*ResourceEvent
		// Same is the number of resources left unchanged.
		Same int
	}
)

func newResourceEvent(update *Update, opts ResourceEventOptions) (*ResourceEvent, error) {
	switch opts.Action {
	case CreatedAction, UpdatedAction, DeletedAction, SameAction:
	default:
		return nil, internal.InvalidParameterError(fmt.Sprintf("invalid action: %s", opts.Action))
	}
	if opts.URN == "" {
		return nil, &internal.ErrMissingParameter{Parameter: "urn"}
	}
	return &ResourceEvent{
		ID:          resource.NewID(resource.StateEventKind),
		WorkspaceID: update.WorkspaceID,
		StageID:     update.StageID,
		UpdateID:    update.ID,
		URN:         opts.URN,
		Type:        opts.Type,
		Action:      opts.Action,
		TimeCreated: internal.CurrentTimestamp(),
	}, nil
}

// Name of the resource.
func (e *ResourceEvent) Name() string {
	return ResourceName(e.URN)
}

// ResourceName returns the last segment of a resource urn, e.g. "MyBucket"
// for "urn:pulumi:prod::app::aws:s3/bucket:Bucket::MyBucket".
func ResourceName(urn string) string {
	if i := strings.LastIndex(urn, "::"); i >= 0 {
		return urn[i+2:]
	}
	return urn
}

// sortByName sorts events in ascending order of resource name.
func sortByName(events []*ResourceEvent) {
	slices.SortStableFunc(events, func(a, b *ResourceEvent) int {
		return strings.Compare(a.Name(), b.Name())
	})
}

// GroupChanges groups an update's resource events by action.
func GroupChanges(update *Update, events []*ResourceEvent) Changes {
	changes := Changes{Same: update.Resource.Same}
	for _, ev := range events {
		switch ev.Action {
		case DeletedAction:
			changes.Removed = append(changes.Removed, ev)
		case CreatedAction:
			changes.Added = append(changes.Added, ev)
		case UpdatedAction:
			changes.Updated = append(changes.Updated, ev)
		}
	}
	return changes
}

// Empty is true if the update changed nothing.
func (c Changes) Empty() bool {
	return len(c.Removed) == 0 && len(c.Added) == 0 && len(c.Updated) == 0 && c.Same == 0
}

// countActions tallies resource events by action.
func countActions(actions map[Action]int) Counts {
	return Counts{
		Created: actions[CreatedAction],
		Updated: actions[UpdatedAction],
		Deleted: actions[DeletedAction],
		Same:    actions[SameAction],
	}
}
