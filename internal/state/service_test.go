package state

import (
	"context"
	"testing"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/pubsub"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
	"github.com/leg100/console/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	events []pubsub.EventType
}

func (f *fakePublisher) Publish(_ context.Context, typ pubsub.EventType, _ resource.ID, _ any) error {
	f.events = append(f.events, typ)
	return nil
}

func setupStage(t *testing.T, db *sql.DB) (context.Context, *app.Stage) {
	t.Helper()

	ctx := context.Background()
	ws, err := workspace.NewService(workspace.Options{DB: db, Logger: logr.Discard()}).
		Create(ctx, workspace.CreateOptions{Slug: new("acme")})
	require.NoError(t, err)
	ctx = authz.WithActor(ctx, &authz.User{Email: "bob@example.com", WorkspaceID: ws.ID})

	apps := app.NewService(app.Options{DB: db, Logger: logr.Discard()})
	a, err := apps.CreateApp(ctx, app.CreateAppOptions{Name: new("console")})
	require.NoError(t, err)
	stage, err := apps.CreateStage(ctx, a.ID, app.CreateStageOptions{Name: new("production"), Region: "us-east-1"})
	require.NoError(t, err)
	return ctx, stage
}

func TestService(t *testing.T) {
	db := sql.NewTestPool(t)
	ctx, stage := setupStage(t, db)
	publisher := &fakePublisher{}
	svc := NewService(Options{DB: db, Logger: logr.Discard(), Publisher: publisher})

	create := func(t *testing.T, queued bool) *Update {
		t.Helper()
		update, err := svc.CreateUpdate(ctx, CreateUpdateOptions{
			StageID: stage.ID,
			Command: DeployCommand,
			Source:  Source{Type: CLISource},
			Queued:  queued,
		})
		require.NoError(t, err)
		return update
	}

	t.Run("indexes are sequential per stage", func(t *testing.T) {
		first := create(t, false)
		second := create(t, false)
		assert.Equal(t, first.Index+1, second.Index)
	})

	t.Run("unknown stage", func(t *testing.T) {
		_, err := svc.CreateUpdate(ctx, CreateUpdateOptions{
			StageID: resource.NewID(resource.StageKind),
			Command: DeployCommand,
			Source:  Source{Type: CLISource},
		})
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
	})

	t.Run("start dequeues", func(t *testing.T) {
		update := create(t, true)
		assert.Equal(t, StatusQueued, update.Status())

		started, err := svc.StartUpdate(ctx, update.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusUpdating, started.Status())

		_, err = svc.StartUpdate(ctx, update.ID)
		assert.ErrorIs(t, err, internal.ErrUpdateAlreadyStarted)
	})

	t.Run("cancel", func(t *testing.T) {
		update := create(t, true)
		canceled, err := svc.CancelUpdate(ctx, update.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCanceled, canceled.Status())
	})

	t.Run("complete recomputes counts", func(t *testing.T) {
		update := create(t, false)
		_, err := svc.StartUpdate(ctx, update.ID)
		require.NoError(t, err)

		err = svc.AddResourceEvents(ctx, update.ID,
			ResourceEventOptions{URN: "u::Zeta", Type: "aws:s3:Bucket", Action: CreatedAction},
			ResourceEventOptions{URN: "u::Alpha", Type: "aws:s3:Bucket", Action: CreatedAction},
			ResourceEventOptions{URN: "u::Beta", Type: "aws:lambda:Function", Action: UpdatedAction},
			ResourceEventOptions{URN: "u::Gamma", Type: "aws:iam:Role", Action: SameAction},
		)
		require.NoError(t, err)

		completed, err := svc.CompleteUpdate(ctx, update.ID, []Error{
			{URN: new("u::Beta"), Message: "access denied"},
		})
		require.NoError(t, err)
		assert.Equal(t, Counts{Created: 2, Updated: 1, Same: 1}, completed.Resource)
		assert.Equal(t, StatusError, completed.Status())
		assert.Contains(t, publisher.events, pubsub.StateUpdateCompletedEvent)

		got, err := svc.GetUpdate(ctx, update.ID)
		require.NoError(t, err)
		assert.Equal(t, completed.Resource, got.Resource)
		require.Len(t, got.Errors, 1)
		assert.Equal(t, "access denied", got.Errors[0].Message)

		events, err := svc.ListResourceEvents(ctx, update.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Zeta"}, names(events))

		_, err = svc.CompleteUpdate(ctx, update.ID, nil)
		assert.ErrorIs(t, err, internal.ErrUpdateAlreadyCompleted)

		err = svc.AddResourceEvents(ctx, update.ID, ResourceEventOptions{URN: "u::Late", Action: CreatedAction})
		assert.ErrorIs(t, err, internal.ErrUpdateAlreadyCompleted)
	})

	t.Run("list most recently started first", func(t *testing.T) {
		updates, err := svc.ListUpdates(ctx, stage.ID)
		require.NoError(t, err)
		require.NotEmpty(t, updates)

		var seenUnstarted bool
		for i, u := range updates {
			if u.TimeStarted == nil {
				seenUnstarted = true
				continue
			}
			assert.False(t, seenUnstarted, "started update listed after unstarted update")
			if i > 0 && updates[i-1].TimeStarted != nil {
				assert.False(t, u.TimeStarted.After(*updates[i-1].TimeStarted))
			}
		}
	})

	t.Run("other workspace", func(t *testing.T) {
		otherCtx := authz.WithActor(context.Background(), &authz.System{WorkspaceID: resource.NewID(resource.WorkspaceKind)})
		updates, err := svc.ListUpdates(otherCtx, stage.ID)
		require.NoError(t, err)
		assert.Empty(t, updates)
	})
}
