package plane

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListModules returns the modules in the project (first page only).
func (c *Client) ListModules(ctx context.Context) ([]Module, error) {
	var modules []Module
	if err := c.list(ctx, c.projectPath("modules/"), &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// CreateModule creates a module and returns its ID. Creation is
// idempotent: when a module with the same name already exists, the
// existing module's ID is returned instead of an error.
func (c *Client) CreateModule(ctx context.Context, name string) (string, error) {
	payload := map[string]string{
		"name":        name,
		"description": fmt.Sprintf("Module for %s", name),
	}

	raw, err := c.do(ctx, http.MethodPost, c.projectPath("modules/"), payload)
	if err != nil {
		return "", err
	}

	var module Module
	if err := json.Unmarshal(raw, &module); err != nil {
		return "", fmt.Errorf("decode module response: %w", err)
	}
	if module.ID == "" {
		return "", fmt.Errorf("module response missing ID")
	}
	return module.ID, nil
}

// DeleteModule deletes a module by ID.
func (c *Client) DeleteModule(ctx context.Context, moduleID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.projectPath("modules/"+moduleID+"/"), nil)
	return err
}

// ListModuleIssues returns the issue associations of a module (first page
// only). Use ModuleIssue.Resolve to normalize the record shape.
func (c *Client) ListModuleIssues(ctx context.Context, moduleID string) ([]ModuleIssue, error) {
	var records []ModuleIssue
	if err := c.list(ctx, c.projectPath("modules/"+moduleID+"/module-issues/"), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LinkIssueToModule associates an issue with a module. Re-linking an
// already linked issue is harmless.
func (c *Client) LinkIssueToModule(ctx context.Context, issueID, moduleID string) error {
	payload := map[string][]string{
		// The API expects an array of issue IDs.
		"issues": {issueID},
	}
	_, err := c.do(ctx, http.MethodPost, c.projectPath("modules/"+moduleID+"/module-issues/"), payload)
	return err
}
