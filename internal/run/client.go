package run

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/leg100/console/internal/api/types"
	consolehttp "github.com/leg100/console/internal/http"
)

type Client struct {
	*consolehttp.Client
}

func (c *Client) ListRuns(ctx context.Context, stageID string, opts types.ListOptions) (*types.RunList, error) {
	req, err := c.NewRequest("GET", fmt.Sprintf("stages/%s/runs", stageID), &opts)
	if err != nil {
		return nil, err
	}
	var list types.RunList
	if err := c.Do(ctx, req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Started reports that a runner has started the run.
func (c *Client) Started(ctx context.Context, runID string, opts types.RunStartedOptions) error {
	req, err := c.NewRequest("POST", fmt.Sprintf("runs/%s/started", runID), &opts)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}

// Completed reports that a runner has finished the run.
func (c *Client) Completed(ctx context.Context, runID string, opts types.RunCompletedOptions) (*types.Run, error) {
	req, err := c.NewRequest("POST", fmt.Sprintf("runs/%s/completed", runID), &opts)
	if err != nil {
		return nil, err
	}
	var run types.Run
	if err := c.Do(ctx, req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// AppendLogs uploads a chunk of CI output at the given offset.
func (c *Client) AppendLogs(ctx context.Context, runID string, offset int, data []byte) error {
	u := fmt.Sprintf("runs/%s/logs?%s", runID, url.Values{"offset": {fmt.Sprint(offset)}}.Encode())
	req, err := c.NewRequest("PUT", u, data)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}

func (c *Client) GetLogs(ctx context.Context, runID string) ([]byte, error) {
	req, err := c.NewRequest("GET", fmt.Sprintf("runs/%s/logs", runID), nil)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Do(ctx, req, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
