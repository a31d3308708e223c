package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/irislabs/irisctl/internal/stack"
	"github.com/irislabs/irisctl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	upNoBuild bool
	upNoProbe bool
	upSettle  time.Duration
)

var upCmd = &cobra.Command{
	Use:   "up [dev|prod]",
	Short: "Build and start a stack, then report its endpoints",
	Long: `Build and start a stack in detached mode, wait until it is
reachable, query container status, and print the endpoint summary.

By default readiness is determined by probing the stack's published TCP
ports. --no-probe restores the original fixed wait (10s dev, 15s prod);
--settle sets an explicit fixed wait.

Examples:
  # Start the development stack
  irisctl up dev

  # Start production without rebuilding images
  irisctl up prod --no-build

  # Start dev, waiting a flat 20 seconds instead of probing
  irisctl up dev --settle 20s`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dev", "prod"},
	RunE:      runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)
	upCmd.Flags().BoolVar(&upNoBuild, "no-build", false, "start without rebuilding images")
	upCmd.Flags().BoolVar(&upNoProbe, "no-probe", false, "use a fixed wait instead of port probing")
	upCmd.Flags().DurationVar(&upSettle, "settle", 0, "fixed wait duration after start (implies --no-probe)")
}

func runUp(cmd *cobra.Command, args []string) error {
	st, cfg, err := resolveStack(args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ui.Infof("Starting IRIS %s environment...", st.Env.Description())

	launcher := stack.NewLauncher(newComposeCLI(cfg))
	return launcher.Up(ctx, st, stack.UpOptions{
		NoBuild: upNoBuild,
		NoProbe: upNoProbe,
		Settle:  upSettle,
	})
}
