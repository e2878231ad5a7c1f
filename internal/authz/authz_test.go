package authz

import (
	"context"
	"testing"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceID(t *testing.T) {
	wsID := resource.NewID(resource.WorkspaceKind)

	t.Run("system", func(t *testing.T) {
		ctx := WithActor(context.Background(), &System{WorkspaceID: wsID})
		got, err := WorkspaceID(ctx)
		require.NoError(t, err)
		assert.Equal(t, wsID, got)
	})

	t.Run("user", func(t *testing.T) {
		ctx := WithActor(context.Background(), &User{Email: "bob@example.com", WorkspaceID: wsID})
		got, err := WorkspaceID(ctx)
		require.NoError(t, err)
		assert.Equal(t, wsID, got)
	})

	t.Run("public", func(t *testing.T) {
		ctx := WithActor(context.Background(), &Public{})
		_, err := WorkspaceID(ctx)
		assert.ErrorIs(t, err, internal.ErrAccessNotPermitted)
	})

	t.Run("no actor", func(t *testing.T) {
		_, err := WorkspaceID(context.Background())
		assert.ErrorIs(t, err, ErrNoActor)
	})
}

func TestCanAccess(t *testing.T) {
	wsID := resource.NewID(resource.WorkspaceKind)
	ctx := WithActor(context.Background(), &System{WorkspaceID: wsID})

	assert.NoError(t, CanAccess(ctx, wsID))
	assert.ErrorIs(t, CanAccess(ctx, resource.NewID(resource.WorkspaceKind)), internal.ErrAccessNotPermitted)
}
