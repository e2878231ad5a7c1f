package cli

import (
	"context"

	"github.com/leg100/console/internal/api/types"
)

type (
	workspaceClient interface {
		CreateWorkspace(ctx context.Context, slug string) (*types.Workspace, error)
		ListWorkspaces(ctx context.Context) ([]*types.Workspace, error)
	}

	appClient interface {
		CreateApp(ctx context.Context, name string) (*types.App, error)
		ListApps(ctx context.Context) ([]*types.App, error)
		CreateStage(ctx context.Context, appID, name, region string) (*types.Stage, error)
		ListStages(ctx context.Context, appID string) ([]*types.Stage, error)
	}

	repoClient interface {
		Connect(ctx context.Context, appID string, opts types.AppRepoConnectOptions) (*types.AppRepo, error)
		Get(ctx context.Context, appID string) (*types.AppRepo, error)
		Disconnect(ctx context.Context, id string) error
	}

	runClient interface {
		ListRuns(ctx context.Context, stageID string, opts types.ListOptions) (*types.RunList, error)
		GetLogs(ctx context.Context, runID string) ([]byte, error)
	}

	updateClient interface {
		ListUpdates(ctx context.Context, stageID string) ([]*types.Update, error)
		GetUpdate(ctx context.Context, updateID string) (*types.Update, error)
	}

	issueClient interface {
		ListIssues(ctx context.Context, stageID string, resolved bool) (*types.IssueList, error)
		ResolveIssue(ctx context.Context, issueID string) (*types.Issue, error)
		RegisterLogGroup(ctx context.Context, stageID, logGroup string) error
	}
)
