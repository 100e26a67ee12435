package cli

import (
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the project to a work-package file",
	Long: `Export the project's modules, issues and comments to a JSON document
that can be re-imported with sync.

Example:
  planesync export --output issues_export.json`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("output", "issues_export.json", "output file path")
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	ctx, cancel := signalContext()
	defer cancel()

	ctrl, err := newController(ctx)
	if err != nil {
		return err
	}
	return ctrl.Export(ctx, output)
}
