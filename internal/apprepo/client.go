package apprepo

import (
	"context"
	"fmt"

	"github.com/leg100/console/internal/api/types"
	consolehttp "github.com/leg100/console/internal/http"
)

type Client struct {
	*consolehttp.Client
}

func (c *Client) Connect(ctx context.Context, appID string, opts types.AppRepoConnectOptions) (*types.AppRepo, error) {
	req, err := c.NewRequest("POST", fmt.Sprintf("apps/%s/repo", appID), &opts)
	if err != nil {
		return nil, err
	}
	var repo types.AppRepo
	if err := c.Do(ctx, req, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

func (c *Client) Get(ctx context.Context, appID string) (*types.AppRepo, error) {
	req, err := c.NewRequest("GET", fmt.Sprintf("apps/%s/repo", appID), nil)
	if err != nil {
		return nil, err
	}
	var repo types.AppRepo
	if err := c.Do(ctx, req, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

func (c *Client) Disconnect(ctx context.Context, id string) error {
	req, err := c.NewRequest("DELETE", fmt.Sprintf("app-repos/%s", id), nil)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}
