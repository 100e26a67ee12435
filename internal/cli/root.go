// Package cli implements the planesync command surface.
package cli

import (
	"fmt"
	"os"

	"github.com/andywolf/planesync/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "planesync",
	Short: "Planesync - Sync local work packages to a Plane project",
	Long: `Planesync pushes local work packages (module name to issues) into a
Plane.so-compatible project, one module per package and one issue per entry.
Each issue's description becomes its first comment. The same tool exports an
existing project back to a work-package file and cleans up synced content.

Example:
  planesync sync --input work_packages.json`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Set version for --version flag
	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .planesync.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".planesync")
	}

	viper.SetEnvPrefix("PLANE")
	viper.AutomaticEnv()

	// The documented environment variables map onto nested config keys.
	_ = viper.BindEnv("plane.api_key", "PLANE_API_KEY")
	_ = viper.BindEnv("plane.api_key_secret", "PLANE_API_KEY_SECRET")
	_ = viper.BindEnv("plane.workspace_slug", "PLANE_WORKSPACE_SLUG")
	_ = viper.BindEnv("plane.project_id", "PLANE_PROJECT_ID")
	_ = viper.BindEnv("plane.host", "PLANE_HOST")

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
