package cli

import (
	"encoding/json"
	"os"

	"github.com/irislabs/irisctl/internal/stack"
	"github.com/spf13/cobra"
)

var endpointsCmd = &cobra.Command{
	Use:       "endpoints [dev|prod]",
	Short:     "Print the endpoint summary for a stack",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dev", "prod"},
	RunE:      runEndpoints,
}

func init() {
	rootCmd.AddCommand(endpointsCmd)
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	st, cfg, err := resolveStack(args)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st.Endpoints)
	}

	launcher := stack.NewLauncher(newComposeCLI(cfg))
	launcher.PrintEndpoints(st)
	return nil
}
