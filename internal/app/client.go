package app

import (
	"context"
	"fmt"

	"github.com/leg100/console/internal/api/types"
	consolehttp "github.com/leg100/console/internal/http"
)

type Client struct {
	*consolehttp.Client
}

func (c *Client) CreateApp(ctx context.Context, name string) (*types.App, error) {
	req, err := c.NewRequest("POST", "apps", &types.AppCreateOptions{Name: name})
	if err != nil {
		return nil, err
	}
	var app types.App
	if err := c.Do(ctx, req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) ListApps(ctx context.Context) ([]*types.App, error) {
	req, err := c.NewRequest("GET", "apps", nil)
	if err != nil {
		return nil, err
	}
	var apps []*types.App
	if err := c.Do(ctx, req, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) CreateStage(ctx context.Context, appID, name, region string) (*types.Stage, error) {
	req, err := c.NewRequest("POST", fmt.Sprintf("apps/%s/stages", appID), &types.StageCreateOptions{
		Name:   name,
		Region: region,
	})
	if err != nil {
		return nil, err
	}
	var stage types.Stage
	if err := c.Do(ctx, req, &stage); err != nil {
		return nil, err
	}
	return &stage, nil
}

func (c *Client) ListStages(ctx context.Context, appID string) ([]*types.Stage, error) {
	req, err := c.NewRequest("GET", fmt.Sprintf("apps/%s/stages", appID), nil)
	if err != nil {
		return nil, err
	}
	var stages []*types.Stage
	if err := c.Do(ctx, req, &stages); err != nil {
		return nil, err
	}
	return stages, nil
}
