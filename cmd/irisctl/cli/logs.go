package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/irislabs/irisctl/internal/compose"
	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:   "logs [dev|prod] [service...]",
	Short: "View logs from a stack",
	Long: `View container logs from a stack, optionally limited to specific
services.

Examples:
  irisctl logs dev              # All dev stack logs
  irisctl logs dev web redis    # Only the web and redis services
  irisctl logs prod -f          # Follow production logs
  irisctl logs dev -n 50        # Last 50 lines per container`,
	Args: cobra.ArbitraryArgs,
	RunE: runStackLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 0, "number of lines to show per container (0 = all)")
}

func runStackLogs(cmd *cobra.Command, args []string) error {
	var envArgs []string
	var services []string
	if len(args) > 0 {
		envArgs = args[:1]
		services = args[1:]
	}

	st, cfg, err := resolveStack(envArgs)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return newComposeCLI(cfg).Logs(ctx, st.File, st.Project, services, compose.LogsOptions{
		Follow: logsFollow,
		Tail:   logsLines,
	})
}
