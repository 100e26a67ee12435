package cli

import (
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all synced modules and their issues",
	Long: `Delete every module in the project along with the issues linked to it.
Issues deleted first, then the module; failures on individual items are
logged and skipped.`,
	RunE: runCleanup,
}

var deleteIssuesCmd = &cobra.Command{
	Use:   "delete-issues",
	Short: "Delete every issue in the project",
	Long: `Delete all issues in the project directly, whether or not they are
linked to a module.`,
	RunE: runDeleteIssues,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(deleteIssuesCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	ctrl, err := newController(ctx)
	if err != nil {
		return err
	}
	return ctrl.Cleanup(ctx)
}

func runDeleteIssues(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	ctrl, err := newController(ctx)
	if err != nil {
		return err
	}
	return ctrl.DeleteAllIssues(ctx)
}
