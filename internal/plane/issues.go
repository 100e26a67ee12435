package plane

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListIssues returns the issues in the project regardless of module
// association (first page only).
func (c *Client) ListIssues(ctx context.Context) ([]Issue, error) {
	var issues []Issue
	if err := c.list(ctx, c.projectPath("issues/"), &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// CreateIssue creates an issue. When the issue carries a description it is
// attached as the issue's first comment; a comment failure is reported but
// does not fail the operation, since the issue already exists remotely.
// When a module ID is set the issue is linked to it; a link failure does
// fail the operation, since linkage is part of the create contract.
func (c *Client) CreateIssue(ctx context.Context, issue NewIssue) (*Issue, error) {
	payload := map[string]string{
		"name": issue.Name,
	}

	raw, err := c.do(ctx, http.MethodPost, c.projectPath("issues/"), payload)
	if err != nil {
		return nil, err
	}

	var created Issue
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("decode issue response: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("issue response missing ID")
	}

	if issue.Description != "" {
		if _, err := c.CreateComment(ctx, created.ID, issue.Description); err != nil {
			c.logger.Printf("Warning: could not add description comment to issue %s: %v", created.ID, err)
		}
	}

	if issue.ModuleID != "" {
		if err := c.LinkIssueToModule(ctx, created.ID, issue.ModuleID); err != nil {
			return nil, fmt.Errorf("link issue %s to module %s: %w", created.ID, issue.ModuleID, err)
		}
	}

	return &created, nil
}

// DeleteIssue deletes an issue by ID.
func (c *Client) DeleteIssue(ctx context.Context, issueID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.projectPath("issues/"+issueID+"/"), nil)
	return err
}

// ListIssueTypes returns the issue types available to the project. Issue
// types are gated behind a paid plan; a plan-restriction response yields
// an empty list, not an error.
func (c *Client) ListIssueTypes(ctx context.Context) ([]IssueType, error) {
	var types []IssueType
	if err := c.list(ctx, c.projectPath("issue-types/"), &types); err != nil {
		if isPaymentRequired(err) {
			return nil, nil
		}
		return nil, err
	}
	return types, nil
}

// CreateIssueProperty creates a custom property on an issue type.
func (c *Client) CreateIssueProperty(ctx context.Context, issueTypeID string, prop IssueProperty) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, c.projectPath("issue-types/"+issueTypeID+"/issue-properties/"), prop)
}
