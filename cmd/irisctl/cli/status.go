package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/irislabs/irisctl/internal/docker"
	"github.com/irislabs/irisctl/internal/log"
	"github.com/irislabs/irisctl/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [dev|prod]",
	Short: "Show the containers of a stack",
	Long: `Show the containers of a stack with their state, age, and published
ports, queried from the Docker daemon by compose project label.

When the daemon is unreachable the command falls back to 'compose ps'.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dev", "prod"},
	RunE:      runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	Env        string                 `json:"env"`
	Project    string                 `json:"project"`
	Containers []docker.ContainerInfo `json:"containers"`
}

// dockerClient is the slice of the Docker client that status needs.
type dockerClient interface {
	Ping(ctx context.Context) error
	Close() error
	StackContainers(ctx context.Context, project string) ([]docker.ContainerInfo, error)
}

// newDockerClient is replaceable for testing.
var newDockerClient = func() (dockerClient, error) { return docker.NewClient() }

func runStatus(cmd *cobra.Command, args []string) error {
	st, cfg, err := resolveStack(args)
	if err != nil {
		return err
	}
	project, err := projectName(st)
	if err != nil {
		return err
	}

	ctx := context.Background()
	out := cmd.OutOrStdout()

	client, err := newDockerClient()
	if err == nil {
		defer client.Close()
		err = client.Ping(ctx)
	}
	if err != nil {
		// No daemon access through the SDK; let the compose CLI report
		// whatever it can.
		log.Debug("docker daemon unreachable, falling back to compose ps", "error", err)
		ui.Warnf("docker daemon unreachable (%v), falling back to compose ps", err)
		return newComposeCLI(cfg).PS(ctx, st.File, project)
	}

	containers, err := client.StackContainers(ctx, project)
	if err != nil {
		return err
	}

	if jsonOut {
		payload := statusOutput{
			Env:        string(st.Env),
			Project:    project,
			Containers: containers,
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	if len(containers) == 0 {
		fmt.Fprintf(out, "No containers for project %q. Start the stack with 'irisctl up %s'.\n", project, st.Env)
		return nil
	}

	ui.Section(fmt.Sprintf("IRIS %s environment (%s)", st.Env.Description(), project))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tSTATE\tAGE\tPORTS")
	for _, c := range containers {
		tag := ui.FailTag()
		if c.State == "running" {
			tag = ui.OKTag()
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n",
			tag, c.Service, c.State, humanize.Time(c.Created), strings.Join(c.Ports, ", "))
	}
	return tw.Flush()
}
