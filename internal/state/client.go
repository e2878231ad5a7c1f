package state

import (
	"context"
	"fmt"

	"github.com/leg100/console/internal/api/types"
	consolehttp "github.com/leg100/console/internal/http"
)

type Client struct {
	*consolehttp.Client
}

func (c *Client) CreateUpdate(ctx context.Context, stageID string, opts types.UpdateCreateOptions) (*types.Update, error) {
	req, err := c.NewRequest("POST", fmt.Sprintf("stages/%s/updates", stageID), &opts)
	if err != nil {
		return nil, err
	}
	var update types.Update
	if err := c.Do(ctx, req, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

func (c *Client) ListUpdates(ctx context.Context, stageID string) ([]*types.Update, error) {
	req, err := c.NewRequest("GET", fmt.Sprintf("stages/%s/updates", stageID), nil)
	if err != nil {
		return nil, err
	}
	var updates []*types.Update
	if err := c.Do(ctx, req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) GetUpdate(ctx context.Context, updateID string) (*types.Update, error) {
	req, err := c.NewRequest("GET", fmt.Sprintf("updates/%s", updateID), nil)
	if err != nil {
		return nil, err
	}
	var update types.Update
	if err := c.Do(ctx, req, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

func (c *Client) StartUpdate(ctx context.Context, updateID string) error {
	req, err := c.NewRequest("POST", fmt.Sprintf("updates/%s/start", updateID), nil)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}

func (c *Client) CancelUpdate(ctx context.Context, updateID string) error {
	req, err := c.NewRequest("POST", fmt.Sprintf("updates/%s/cancel", updateID), nil)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}

func (c *Client) AddResourceEvents(ctx context.Context, updateID string, events []*types.ResourceEventOptions) error {
	req, err := c.NewRequest("POST", fmt.Sprintf("updates/%s/events", updateID), events)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}

func (c *Client) CompleteUpdate(ctx context.Context, updateID string, opts types.UpdateCompleteOptions) (*types.Update, error) {
	req, err := c.NewRequest("POST", fmt.Sprintf("updates/%s/complete", updateID), &opts)
	if err != nil {
		return nil, err
	}
	var update types.Update
	if err := c.Do(ctx, req, &update); err != nil {
		return nil, err
	}
	return &update, nil
}
