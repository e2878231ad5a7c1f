package state

import (
	"testing"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceName(t *testing.T) {
	assert.Equal(t, "MyBucket", ResourceName("urn:pulumi:prod::app::aws:s3/bucket:Bucket::MyBucket"))
	assert.Equal(t, "plain", ResourceName("plain"))
	assert.Equal(t, "", ResourceName("trailing::"))
}

func TestNewResourceEvent(t *testing.T) {
	update := &Update{
		ID:          resource.NewID(resource.UpdateKind),
		WorkspaceID: resource.NewID(resource.WorkspaceKind),
		StageID:     resource.NewID(resource.StageKind),
	}

	ev, err := newResourceEvent(update, ResourceEventOptions{URN: "a::b", Type: "aws:s3:Bucket", Action: CreatedAction})
	require.NoError(t, err)
	assert.Equal(t, update.ID, ev.UpdateID)
	assert.Equal(t, update.StageID, ev.StageID)
	assert.Equal(t, "b", ev.Name())

	_, err = newResourceEvent(update, ResourceEventOptions{URN: "a::b", Action: "replaced"})
	var invalid internal.InvalidParameterError
	assert.ErrorAs(t, err, &invalid)

	_, err = newResourceEvent(update, ResourceEventOptions{Action: SameAction})
	var missing *internal.ErrMissingParameter
	assert.ErrorAs(t, err, &missing)
}

func TestGroupChanges(t *testing.T) {
	events := []*ResourceEvent{
		{URN: "x::Zeta", Action: CreatedAction},
		{URN: "x::Alpha", Action: DeletedAction},
		{URN: "x::Beta", Action: UpdatedAction},
		{URN: "x::Gamma", Action: SameAction},
		{URN: "x::Delta", Action: CreatedAction},
	}
	sortByName(events)

	changes := GroupChanges(&Update{Resource: Counts{Same: 1}}, events)
	assert.Equal(t, []string{"Alpha"}, names(changes.Removed))
	assert.Equal(t, []string{"Delta", "Zeta"}, names(changes.Added))
	assert.Equal(t, []string{"Beta"}, names(changes.Updated))
	assert.Equal(t, 1, changes.Same)
	assert.False(t, changes.Empty())

	t.Run("empty", func(t *testing.T) {
		assert.True(t, GroupChanges(&Update{}, nil).Empty())
		assert.False(t, GroupChanges(&Update{Resource: Counts{Same: 3}}, nil).Empty())
	})
}

func names(events []*ResourceEvent) (names []string) {
	for _, ev := range events {
		names = append(names, ev.Name())
	}
	return
}
