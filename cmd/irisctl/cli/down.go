package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/irislabs/irisctl/internal/stack"
	"github.com/irislabs/irisctl/internal/ui"
	"github.com/spf13/cobra"
)

var downVolumes bool

var downCmd = &cobra.Command{
	Use:       "down [dev|prod]",
	Short:     "Stop a stack and remove its containers",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dev", "prod"},
	RunE:      runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)
	downCmd.Flags().BoolVar(&downVolumes, "volumes", false, "also remove named volumes")
}

func runDown(cmd *cobra.Command, args []string) error {
	st, cfg, err := resolveStack(args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	launcher := stack.NewLauncher(newComposeCLI(cfg))
	if err := launcher.Down(ctx, st, stack.DownOptions{Volumes: downVolumes}); err != nil {
		return err
	}

	ui.Infof("IRIS %s environment stopped", st.Env.Description())
	return nil
}
