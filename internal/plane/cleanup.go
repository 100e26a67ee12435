package plane

import (
	"context"
	"fmt"
)

// CleanupProject deletes every issue and module in the project. Issues are
// deleted module by module, in listing order, each module's issues before
// the module itself. Per-issue and per-module failures are logged and
// skipped; they never abort the remaining work. Only a failure to list
// the modules at all is returned.
func (c *Client) CleanupProject(ctx context.Context) error {
	modules, err := c.ListModules(ctx)
	if err != nil {
		return fmt.Errorf("list modules for cleanup: %w", err)
	}
	c.logger.Printf("plane: found %d modules to clean up", len(modules))

	for _, module := range modules {
		records, err := c.ListModuleIssues(ctx, module.ID)
		if err != nil {
			c.logger.Printf("Error: could not list issues of module %s: %v", module.Name, err)
			continue
		}
		c.logger.Printf("plane: found %d issues in module %s", len(records), module.Name)

		for _, record := range records {
			issue, ok := record.Resolve()
			if !ok {
				c.logger.Printf("Warning: skipping module-issue record without a usable ID in module %s", module.Name)
				continue
			}
			if err := c.DeleteIssue(ctx, issue.ID); err != nil {
				c.logger.Printf("Error: could not delete issue %s (%s): %v", issue.Name, issue.ID, err)
				continue
			}
			c.logger.Printf("plane: deleted issue %s (%s)", issue.Name, issue.ID)
		}

		if err := c.DeleteModule(ctx, module.ID); err != nil {
			c.logger.Printf("Error: could not delete module %s (%s): %v", module.Name, module.ID, err)
			continue
		}
		c.logger.Printf("plane: deleted module %s (%s)", module.Name, module.ID)
	}

	return nil
}

// DeleteAllIssues deletes every issue in the project regardless of module
// association. Per-issue failures are logged and skipped independently.
func (c *Client) DeleteAllIssues(ctx context.Context) error {
	issues, err := c.ListIssues(ctx)
	if err != nil {
		return fmt.Errorf("list issues for deletion: %w", err)
	}
	c.logger.Printf("plane: found %d issues in project to delete", len(issues))

	for _, issue := range issues {
		if issue.ID == "" {
			c.logger.Printf("Warning: skipping issue without ID: %q", issue.Name)
			continue
		}
		if err := c.DeleteIssue(ctx, issue.ID); err != nil {
			c.logger.Printf("Error: could not delete issue %s (%s): %v", issue.Name, issue.ID, err)
			continue
		}
		c.logger.Printf("plane: deleted issue %s (%s)", issue.Name, issue.ID)
	}

	return nil
}
