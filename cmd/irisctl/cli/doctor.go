package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/irislabs/irisctl/internal/compose"
	"github.com/irislabs/irisctl/internal/config"
	"github.com/irislabs/irisctl/internal/docker"
	"github.com/irislabs/irisctl/internal/doctor"
	"github.com/irislabs/irisctl/internal/stack"
	"github.com/irislabs/irisctl/internal/ui"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnostic information about the irisctl environment",
	Long: `Displays diagnostic information for debugging irisctl.

This command shows:
- irisctl version and platform
- Docker daemon reachability
- Compose CLI availability
- The dev and prod compose manifests`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		// A broken config file is itself a finding, not a fatal error here.
		ui.Warnf("%v", err)
		cfg = nil
	}

	fmt.Println(ui.Bold("irisctl Doctor"))
	fmt.Println()

	reg := doctor.NewRegistry()
	reg.Register(&versionSection{})
	reg.Register(&daemonSection{})
	reg.Register(&composeSection{cli: newComposeCLI(cfg)})
	reg.Register(&manifestSection{cfg: cfg})

	for _, section := range reg.Sections() {
		ui.Section(section.Name())
		if err := section.Print(os.Stdout); err != nil {
			fmt.Printf("%s Error: %v\n", ui.FailTag(), err)
		}
		fmt.Println()
	}

	return nil
}

// versionSection shows platform and version info
type versionSection struct{}

func (s *versionSection) Name() string { return "Version" }

func (s *versionSection) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "irisctl:\t%s\n", version)
	fmt.Fprintf(tw, "Platform:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
	return tw.Flush()
}

// daemonSection shows docker daemon reachability
type daemonSection struct{}

func (s *daemonSection) Name() string { return "Docker Daemon" }

func (s *daemonSection) Print(w io.Writer) error {
	ctx := context.Background()

	client, err := docker.NewClient()
	if err != nil {
		fmt.Fprintf(w, "%s %v\n", ui.FailTag(), err)
		return nil
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		fmt.Fprintf(w, "%s %v\n", ui.FailTag(), err)
		return nil
	}

	version, err := client.ServerVersion(ctx)
	if err != nil {
		fmt.Fprintf(w, "%s reachable, version query failed: %v\n", ui.WarnTag(), err)
		return nil
	}
	fmt.Fprintf(w, "%s reachable (version %s)\n", ui.OKTag(), version)
	return nil
}

// composeSection shows compose CLI availability
type composeSection struct {
	cli *compose.CLI
}

func (s *composeSection) Name() string { return "Compose CLI" }

func (s *composeSection) Print(w io.Writer) error {
	version, err := s.cli.Version(context.Background())
	if err != nil {
		fmt.Fprintf(w, "%s not available: %v\n", ui.FailTag(), err)
		return nil
	}
	fmt.Fprintf(w, "%s version %s\n", ui.OKTag(), version)
	return nil
}

// manifestSection checks the dev and prod compose files
type manifestSection struct {
	cfg *config.Config
}

func (s *manifestSection) Name() string { return "Compose Manifests" }

func (s *manifestSection) Print(w io.Writer) error {
	ctx := context.Background()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, env := range []stack.Env{stack.EnvDev, stack.EnvProd} {
		st := stack.Resolve(env, s.cfg)
		if _, err := os.Stat(st.File); err != nil {
			fmt.Fprintf(tw, "%s %s:\t%s\tmissing\n", ui.FailTag(), env, st.File)
			continue
		}
		m, err := compose.LoadManifest(ctx, st.File)
		if err != nil {
			fmt.Fprintf(tw, "%s %s:\t%s\t%v\n", ui.FailTag(), env, st.File, err)
			continue
		}
		fmt.Fprintf(tw, "%s %s:\t%s\t%d services\n", ui.OKTag(), env, st.File, len(m.Services))
	}
	return tw.Flush()
}
