// Package cli implements the irisctl command-line interface using Cobra.
// It provides commands for launching, stopping, and inspecting the IRIS
// development and production container stacks.
package cli

import (
	"os"
	"path/filepath"

	"github.com/irislabs/irisctl/internal/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	jsonOut bool
)

// debugRetentionDays is how long debug log files are kept.
const debugRetentionDays = 7

var rootCmd = &cobra.Command{
	Use:   "irisctl",
	Short: "irisctl - launch and inspect the IRIS container stacks",
	Long: `irisctl manages the IRIS application's docker compose environments.

The dev stack runs the application on port 8000 alongside PostgreSQL (5432)
and Redis (6379); the prod stack serves through nginx on port 80 with the
admin interface under /admin.

irisctl up dev brings the development stack up, waits until its published
ports accept connections, and prints the reachable endpoints.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debugDir := ""
		if home, err := os.UserHomeDir(); err == nil {
			debugDir = filepath.Join(home, ".irisctl", "debug")
		}

		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			DebugDir:      debugDir,
			RetentionDays: debugRetentionDays,
		}); err != nil {
			// Log init failure is non-fatal - fallback to default logger
			cmd.PrintErrf("Warning: failed to initialize debug logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
}
