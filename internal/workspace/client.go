package workspace

import (
	"context"

	"github.com/leg100/console/internal/api/types"
	consolehttp "github.com/leg100/console/internal/http"
)

type Client struct {
	*consolehttp.Client
}

func (c *Client) CreateWorkspace(ctx context.Context, slug string) (*types.Workspace, error) {
	req, err := c.NewRequest("POST", "workspaces", &types.WorkspaceCreateOptions{Slug: slug})
	if err != nil {
		return nil, err
	}
	var ws types.Workspace
	if err := c.Do(ctx, req, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]*types.Workspace, error) {
	req, err := c.NewRequest("GET", "workspaces", nil)
	if err != nil {
		return nil, err
	}
	var list []*types.Workspace
	if err := c.Do(ctx, req, &list); err != nil {
		return nil, err
	}
	return list, nil
}
