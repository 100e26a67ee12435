package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/andywolf/planesync/internal/controller"
	"github.com/andywolf/planesync/internal/workpackage"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync work packages to the project",
	Long: `Sync a work-package file to the configured Plane project.

Each top-level key becomes a module, each entry becomes an issue linked to
that module, and each issue's description becomes its first comment.

Example:
  planesync sync --input work_packages.json --dry-run`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("input", "work_packages.json", "work-package file (JSON or YAML)")
	syncCmd.Flags().Bool("dry-run", false, "show what would be created without calling the API")
}

func runSync(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	packages, err := workpackage.Load(input)
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		return fmt.Errorf("no work packages found in %s", input)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if dryRun {
		ctrl := controller.New(nil,
			controller.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
			controller.WithDryRun(true))
		return ctrl.Sync(ctx, packages)
	}

	ctrl, err := newController(ctx)
	if err != nil {
		return err
	}
	return ctrl.Sync(ctx, packages)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, stopping...")
		cancel()
	}()
	return ctx, cancel
}
