// Package controller orchestrates the sync, export and cleanup flows
// between local work packages and the Plane API.
package controller

import (
	"context"
	"fmt"
	"log"

	"github.com/andywolf/planesync/internal/cloud/gcp"
	"github.com/andywolf/planesync/internal/plane"
	"github.com/andywolf/planesync/internal/security"
	"github.com/andywolf/planesync/internal/workpackage"
)

// API is the subset of the Plane client the controller drives.
type API interface {
	ListModules(ctx context.Context) ([]plane.Module, error)
	CreateModule(ctx context.Context, name string) (string, error)
	ListModuleIssues(ctx context.Context, moduleID string) ([]plane.ModuleIssue, error)
	CreateIssue(ctx context.Context, issue plane.NewIssue) (*plane.Issue, error)
	ListIssueComments(ctx context.Context, issueID string) ([]plane.Comment, error)
	ListIssueTypes(ctx context.Context) ([]plane.IssueType, error)
	CleanupProject(ctx context.Context) error
	DeleteAllIssues(ctx context.Context) error
}

// Controller runs the high-level flows against a Plane project.
type Controller struct {
	client      API
	logger      *log.Logger
	cloudLogger gcp.LoggerInterface
	scrubber    *security.Scrubber
	dryRun      bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the local logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithCloudLogger mirrors controller output to a structured logger.
func WithCloudLogger(cl gcp.LoggerInterface) Option {
	return func(c *Controller) {
		c.cloudLogger = cl
	}
}

// WithDryRun makes Sync report planned actions without touching the API.
func WithDryRun(dryRun bool) Option {
	return func(c *Controller) {
		c.dryRun = dryRun
	}
}

// New creates a Controller. The client may be nil only for dry runs.
func New(client API, opts ...Option) *Controller {
	c := &Controller{
		client:   client,
		logger:   log.Default(),
		scrubber: security.NewScrubber(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sync pushes the work packages to the project: one module per package,
// one issue per item. A failed module is logged and skipped; the
// remaining modules are still processed.
func (c *Controller) Sync(ctx context.Context, packages workpackage.Set) error {
	if c.dryRun {
		c.renderDryRun(packages)
		return nil
	}

	// Issue-type discovery is informational; a restricted workspace
	// simply reports none.
	types, err := c.client.ListIssueTypes(ctx)
	if err != nil {
		c.logWarning(fmt.Sprintf("issue type discovery failed: %v", err))
	} else if len(types) > 0 {
		c.logInfo(fmt.Sprintf("project has %d issue types", len(types)))
	}

	var created, failed int
	for _, moduleName := range packages.ModuleNames() {
		moduleID, err := c.client.CreateModule(ctx, moduleName)
		if err != nil {
			c.logError(fmt.Sprintf("create module %q: %v", moduleName, err))
			failed++
			continue
		}
		c.logInfo(fmt.Sprintf("module %q ready (%s)", moduleName, moduleID))

		for _, item := range packages[moduleName] {
			issue, err := c.client.CreateIssue(ctx, plane.NewIssue{
				Name:        item.Name,
				Description: item.Description,
				ModuleID:    moduleID,
			})
			if err != nil {
				c.logError(fmt.Sprintf("create issue %q in module %q: %v", item.Name, moduleName, err))
				continue
			}
			created++
			c.logInfo(fmt.Sprintf("created issue %q (%s)", issue.Name, issue.ID))
		}
	}

	c.logInfo(fmt.Sprintf("sync complete: %d issues created, %d modules failed", created, failed))
	if failed == len(packages) && len(packages) > 0 {
		return fmt.Errorf("all %d modules failed to sync", failed)
	}
	return nil
}

// renderDryRun logs the actions Sync would take.
func (c *Controller) renderDryRun(packages workpackage.Set) {
	c.logInfo("dry run: no API calls will be made")
	for _, moduleName := range packages.ModuleNames() {
		c.logInfo(fmt.Sprintf("would create module %q", moduleName))
		for _, item := range packages[moduleName] {
			c.logInfo(fmt.Sprintf("  would create issue %q", item.Name))
		}
	}
}

// Export walks the project and writes its modules, issues and comments
// as a work-package export document.
func (c *Controller) Export(ctx context.Context, path string) error {
	modules, err := c.client.ListModules(ctx)
	if err != nil {
		return fmt.Errorf("list modules: %w", err)
	}

	export := make(workpackage.Export, len(modules))
	for _, module := range modules {
		records, err := c.client.ListModuleIssues(ctx, module.ID)
		if err != nil {
			c.logWarning(fmt.Sprintf("list issues for module %q: %v", module.Name, err))
			export[module.Name] = []workpackage.ExportedIssue{}
			continue
		}

		issues := make([]workpackage.ExportedIssue, 0, len(records))
		for _, record := range records {
			issue, ok := record.Resolve()
			if !ok {
				c.logWarning(fmt.Sprintf("skipping unrecognized issue record %s in module %q", record.ID, module.Name))
				continue
			}

			exported := workpackage.ExportedIssue{
				Name:     issue.Name,
				ID:       issue.ID,
				Comments: []workpackage.ExportedComment{},
			}
			comments, err := c.client.ListIssueComments(ctx, issue.ID)
			if err != nil {
				c.logWarning(fmt.Sprintf("list comments for issue %q: %v", issue.Name, err))
			}
			for _, comment := range comments {
				exported.Comments = append(exported.Comments, workpackage.ExportedComment{
					Text:      comment.Comment,
					CreatedAt: comment.CreatedAt,
				})
			}
			issues = append(issues, exported)
		}
		export[module.Name] = issues
	}

	if err := export.WriteFile(path); err != nil {
		return err
	}
	c.logInfo(fmt.Sprintf("exported %d modules to %s", len(export), path))
	return nil
}

// Cleanup removes all synced modules and their issues.
func (c *Controller) Cleanup(ctx context.Context) error {
	c.logInfo("cleaning up project modules and issues")
	return c.client.CleanupProject(ctx)
}

// DeleteAllIssues removes every issue in the project, linked or not.
func (c *Controller) DeleteAllIssues(ctx context.Context) error {
	c.logInfo("deleting all project issues")
	return c.client.DeleteAllIssues(ctx)
}
