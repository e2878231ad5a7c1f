package apprepo

import (
	"context"
	"testing"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/pubsub"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/run"
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

func setupApp(t *testing.T, db *sql.DB, slug string) (context.Context, *app.App) {
	t.Helper()

	ws, err := workspace.NewService(workspace.Options{DB: db, Logger: logr.Discard()}).
		Create(context.Background(), workspace.CreateOptions{Slug: &slug})
	require.NoError(t, err)
	ctx := authz.WithActor(context.Background(), &authz.User{Email: "bob@example.com", WorkspaceID: ws.ID})

	a, err := app.NewService(app.Options{DB: db, Logger: logr.Discard()}).
		CreateApp(ctx, app.CreateAppOptions{Name: new("console")})
	require.NoError(t, err)
	return ctx, a
}

func TestService(t *testing.T) {
	db := sql.NewTestPool(t)
	publisher := &fakePublisher{}
	svc := NewService(Options{DB: db, Logger: logr.Discard(), Publisher: publisher})

	ctx, acmeApp := setupApp(t, db, "acme")
	otherCtx, otherApp := setupApp(t, db, "other")

	repo, err := svc.Connect(ctx, ConnectOptions{AppID: acmeApp.ID, RepoID: 123})
	require.NoError(t, err)
	assert.Equal(t, []pubsub.EventType{pubsub.AppRepoConnectedEvent}, publisher.events)

	_, err = svc.Connect(otherCtx, ConnectOptions{AppID: otherApp.ID, RepoID: 123})
	require.NoError(t, err)

	t.Run("reconnect updates existing connection", func(t *testing.T) {
		got, err := svc.Connect(ctx, ConnectOptions{AppID: acmeApp.ID, RepoID: 456, BranchPattern: "main"})
		require.NoError(t, err)
		assert.Equal(t, repo.ID, got.ID)
		assert.Equal(t, int64(456), got.RepoID)
		assert.Equal(t, "main", got.BranchPattern)

		got, err = svc.Connect(ctx, ConnectOptions{AppID: acmeApp.ID, RepoID: 123})
		require.NoError(t, err)
		assert.Equal(t, int64(123), got.RepoID)
	})

	t.Run("connect app in another workspace", func(t *testing.T) {
		_, err := svc.Connect(ctx, ConnectOptions{AppID: otherApp.ID, RepoID: 123})
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
	})

	t.Run("get", func(t *testing.T) {
		got, err := svc.GetByID(ctx, repo.ID)
		require.NoError(t, err)
		assert.Equal(t, acmeApp.ID, got.AppID)

		got, err = svc.GetByAppID(ctx, acmeApp.ID)
		require.NoError(t, err)
		assert.Equal(t, repo.ID, got.ID)

		_, err = svc.GetByID(otherCtx, repo.ID)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
	})

	t.Run("list by repo spans workspaces", func(t *testing.T) {
		repos, err := svc.ListByRepo(ctx, GithubType, 123)
		require.NoError(t, err)
		assert.Len(t, repos, 2)
	})

	t.Run("last event and error", func(t *testing.T) {
		trigger := run.Trigger{Source: GithubType, Branch: "main", Repo: run.TriggerRepo{ID: 123}}
		require.NoError(t, svc.SetLastEvent(ctx, 123, trigger))

		err := svc.SetLastEventError(ctx, SetLastEventErrorOptions{AppID: &acmeApp.ID, RepoID: 123, Error: "no stage"})
		require.NoError(t, err)

		got, err := svc.GetByAppID(ctx, acmeApp.ID)
		require.NoError(t, err)
		assert.Equal(t, &trigger, got.LastEvent)
		assert.Equal(t, "no stage", *got.LastEventError)
		assert.NotNil(t, got.TimeLastEvent)

		// other workspace's connection untouched by scoped error
		other, err := svc.GetByAppID(otherCtx, otherApp.ID)
		require.NoError(t, err)
		assert.Nil(t, other.LastEventError)

		// a new event clears the error
		require.NoError(t, svc.SetLastEvent(ctx, 123, trigger))
		got, err = svc.GetByAppID(ctx, acmeApp.ID)
		require.NoError(t, err)
		assert.Nil(t, got.LastEventError)

		err = svc.SetLastEventError(ctx, SetLastEventErrorOptions{RepoID: 123})
		assert.ErrorIs(t, err, ErrEmptyEventError)
	})

	t.Run("unknown repo is not an error", func(t *testing.T) {
		assert.NoError(t, svc.SetLastEvent(ctx, 999, run.Trigger{}))
	})

	t.Run("disconnect", func(t *testing.T) {
		err := svc.Disconnect(otherCtx, repo.ID)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)

		require.NoError(t, svc.Disconnect(ctx, repo.ID))
		_, err = svc.GetByID(ctx, repo.ID)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
	})
}
