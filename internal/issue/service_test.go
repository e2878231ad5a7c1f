package issue

import (
	"context"
	"testing"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/authz"
	"github.com/leg100/console/internal/logr"
	"github.com/leg100/console/internal/resource"
	"github.com/leg100/console/internal/sql"
	"github.com/leg100/console/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStage creates a workspace, app and stage, returning a context with a
// user scoped to the workspace.
func setupStage(t *testing.T, db *sql.DB, slug string) (context.Context, *app.Stage) {
	t.Helper()

	ctx := context.Background()
	ws, err := workspace.NewService(workspace.Options{DB: db, Logger: logr.Discard()}).
		Create(ctx, workspace.CreateOptions{Slug: new(slug)})
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
	ctx, stage := setupStage(t, db, "acme")
	svc := NewService(Options{DB: db, Logger: logr.Discard()})

	const logGroup = "/aws/lambda/production-api"
	require.NoError(t, svc.RegisterLogGroup(ctx, stage.ID, logGroup))

	seen := time.Now().Add(-time.Minute).Truncate(time.Millisecond)
	data := &LogsData{
		MessageType: DataMessage,
		LogGroup:    logGroup,
		LogEvents: []LogEvent{
			{ID: "1", Timestamp: seen.UnixMilli(), Message: "[ERROR] ValueError: invalid literal"},
			{ID: "2", Timestamp: seen.UnixMilli(), Message: "INFO all good"},
			{ID: "3", Timestamp: seen.UnixMilli(), Message: "[ERROR] ValueError: invalid literal"},
			{ID: "4", Timestamp: seen.UnixMilli(), Message: "Task timed out after 3.00 seconds"},
		},
	}
	// extraction happens without a user
	require.NoError(t, svc.Extract(context.Background(), data))

	page, err := svc.ListByStage(ctx, stage.ID, ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	counts := map[string]int{}
	for _, issue := range page.Items {
		counts[issue.Error] = issue.Count
	}
	assert.Equal(t, map[string]int{"ValueError": 2, "TimeoutError": 1}, counts)

	t.Run("ignore unregistered log group", func(t *testing.T) {
		err := svc.Extract(context.Background(), &LogsData{
			MessageType: DataMessage,
			LogGroup:    "/aws/lambda/unknown",
			LogEvents:   []LogEvent{{ID: "1", Message: "[ERROR] boom"}},
		})
		assert.NoError(t, err)
	})

	t.Run("resolve and reopen", func(t *testing.T) {
		issue := page.Items[0]
		resolved, err := svc.Resolve(ctx, issue.ID)
		require.NoError(t, err)
		assert.True(t, resolved.Resolved())

		open, err := svc.ListByStage(ctx, stage.ID, ListOptions{})
		require.NoError(t, err)
		assert.Len(t, open.Items, 1)

		closed, err := svc.ListByStage(ctx, stage.ID, ListOptions{Resolved: true})
		require.NoError(t, err)
		assert.Len(t, closed.Items, 1)

		// another occurrence reopens the issue
		require.NoError(t, svc.Extract(context.Background(), &LogsData{
			MessageType: DataMessage,
			LogGroup:    logGroup,
			LogEvents: []LogEvent{{
				ID:        "5",
				Timestamp: time.Now().UnixMilli(),
				Message:   issueMessage(issue),
			}},
		}))
		got, err := svc.Get(ctx, issue.ID)
		require.NoError(t, err)
		assert.False(t, got.Resolved())
		assert.Equal(t, issue.Count+1, got.Count)
	})

	t.Run("delete resolved issues", func(t *testing.T) {
		issue := page.Items[1]
		_, err := svc.Resolve(ctx, issue.ID)
		require.NoError(t, err)

		client := &resolvedIssues{db: svc.db}
		old, err := client.ListOlderThan(context.Background(), time.Now().Add(time.Minute))
		require.NoError(t, err)
		require.Len(t, old, 1)
		require.NoError(t, client.Delete(context.Background(), old[0].ID))

		_, err = svc.Get(ctx, issue.ID)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
	})

	t.Run("other workspaces cannot see issues", func(t *testing.T) {
		otherCtx, _ := setupStage(t, db, "other")
		_, err := svc.Get(otherCtx, page.Items[0].ID)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
	})

	t.Run("other workspaces cannot take over log group", func(t *testing.T) {
		otherCtx, otherStage := setupStage(t, db, "rival")
		err := svc.RegisterLogGroup(otherCtx, otherStage.ID, logGroup)
		assert.Error(t, err)
	})

	t.Run("public actor refused", func(t *testing.T) {
		publicCtx := authz.WithActor(context.Background(), &authz.Public{})
		_, err := svc.ListByStage(publicCtx, stage.ID, ListOptions{})
		assert.ErrorIs(t, err, internal.ErrAccessNotPermitted)

		_, err = svc.Resolve(publicCtx, resource.NewID(resource.IssueKind))
		assert.ErrorIs(t, err, internal.ErrAccessNotPermitted)
	})
}

// issueMessage reconstructs a log message that produces the given issue.
func issueMessage(issue *Issue) string {
	if issue.Error == timeoutErrorType {
		return issue.Message
	}
	return "[ERROR] " + issue.Error + ": " + issue.Message
}
