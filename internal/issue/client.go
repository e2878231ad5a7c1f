package issue

import (
	"context"
	"fmt"

	"github.com/leg100/console/internal/api/types"
	consolehttp "github.com/leg100/console/internal/http"
)

type Client struct {
	*consolehttp.Client
}

func (c *Client) ListIssues(ctx context.Context, stageID string, resolved bool) (*types.IssueList, error) {
	req, err := c.NewRequest("GET", fmt.Sprintf("stages/%s/issues", stageID), &ListOptions{Resolved: resolved})
	if err != nil {
		return nil, err
	}
	var list types.IssueList
	if err := c.Do(ctx, req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) ResolveIssue(ctx context.Context, issueID string) (*types.Issue, error) {
	req, err := c.NewRequest("POST", fmt.Sprintf("issues/%s/resolve", issueID), nil)
	if err != nil {
		return nil, err
	}
	var issue types.Issue
	if err := c.Do(ctx, req, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (c *Client) RegisterLogGroup(ctx context.Context, stageID, logGroup string) error {
	req, err := c.NewRequest("POST", "issues/log-groups", &types.LogGroupRegisterOptions{
		StageID:  stageID,
		LogGroup: logGroup,
	})
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}
