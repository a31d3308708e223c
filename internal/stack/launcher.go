package stack

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/irislabs/irisctl/internal/compose"
	"github.com/irislabs/irisctl/internal/log"
	"github.com/irislabs/irisctl/internal/ready"
)

// Launcher brings stacks up and down through the compose CLI.
type Launcher struct {
	CLI *compose.CLI

	// Out receives the endpoint summary (default: os.Stdout).
	Out io.Writer

	// Sleep and Wait are replaceable for testing.
	Sleep func(d time.Duration)
	Wait  func(ctx context.Context, addrs []string, opts ready.Options) error
}

// NewLauncher creates a Launcher with default wiring.
func NewLauncher(cli *compose.CLI) *Launcher {
	return &Launcher{
		CLI:   cli,
		Out:   os.Stdout,
		Sleep: time.Sleep,
		Wait:  ready.Wait,
	}
}

// UpOptions configures Up.
type UpOptions struct {
	// NoBuild skips the image rebuild.
	NoBuild bool
	// NoProbe replaces readiness probing with the stack's fixed wait.
	NoProbe bool
	// Settle is an explicit fixed wait; non-zero implies NoProbe.
	Settle time.Duration
}

// Up starts the stack, waits for it to come up, queries container status,
// and prints the endpoint summary. Any compose invocation that exits
// non-zero aborts the sequence.
func (l *Launcher) Up(ctx context.Context, st Stack, opts UpOptions) error {
	log.Info("starting stack", "env", st.Env, "file", st.File)
	if err := l.CLI.Up(ctx, st.File, st.Project, compose.UpOptions{
		Build:  !opts.NoBuild,
		Detach: true,
	}); err != nil {
		return fmt.Errorf("starting %s stack: %w", st.Env.Description(), err)
	}

	if err := l.settle(ctx, st, opts); err != nil {
		return fmt.Errorf("waiting for %s stack: %w", st.Env.Description(), err)
	}

	if err := l.CLI.PS(ctx, st.File, st.Project); err != nil {
		return fmt.Errorf("querying %s stack status: %w", st.Env.Description(), err)
	}

	l.PrintEndpoints(st)
	return nil
}

// DownOptions configures Down.
type DownOptions struct {
	// Volumes also removes named volumes.
	Volumes bool
}

// Down stops the stack.
func (l *Launcher) Down(ctx context.Context, st Stack, opts DownOptions) error {
	log.Info("stopping stack", "env", st.Env, "file", st.File)
	if err := l.CLI.Down(ctx, st.File, st.Project, compose.DownOptions{Volumes: opts.Volumes}); err != nil {
		return fmt.Errorf("stopping %s stack: %w", st.Env.Description(), err)
	}
	return nil
}

// settle waits for the stack to come up, either by probing published ports
// or by the configured fixed wait.
func (l *Launcher) settle(ctx context.Context, st Stack, opts UpOptions) error {
	fixed := opts.Settle
	if fixed == 0 && (opts.NoProbe || st.Settle > 0) {
		fixed = st.Settle
		if fixed == 0 {
			fixed = st.SettleFallback
		}
	}
	if fixed > 0 {
		log.Debug("settling for fixed duration", "duration", fixed)
		l.Sleep(fixed)
		return nil
	}

	addrs := l.probeAddrs(ctx, st)
	if len(addrs) == 0 {
		// Nothing to probe; fall back to the script's blind wait.
		log.Debug("no probe targets, settling", "duration", st.SettleFallback)
		l.Sleep(st.SettleFallback)
		return nil
	}

	log.Debug("probing endpoints", "addrs", addrs, "timeout", st.ReadyTimeout)
	return l.Wait(ctx, addrs, ready.Options{Timeout: st.ReadyTimeout})
}

// probeAddrs prefers the published ports of the compose manifest; the
// built-in endpoint table is the fallback when the file cannot be parsed.
func (l *Launcher) probeAddrs(ctx context.Context, st Stack) []string {
	m, err := compose.LoadManifest(ctx, st.File)
	if err != nil {
		log.Debug("manifest not parseable, probing endpoint table", "file", st.File, "error", err)
		return st.ProbeAddrs()
	}
	if addrs := m.ProbeAddrs("localhost"); len(addrs) > 0 {
		return addrs
	}
	return st.ProbeAddrs()
}

// PrintEndpoints writes the endpoint summary for a running stack.
func (l *Launcher) PrintEndpoints(st Stack) {
	fmt.Fprintf(l.Out, "\nIRIS %s environment is ready\n\n", st.Env.Description())
	tw := tabwriter.NewWriter(l.Out, 0, 4, 2, ' ', 0)
	for _, ep := range st.Endpoints {
		fmt.Fprintf(tw, "  %s\t%s\n", ep.Name, ep.URL)
	}
	tw.Flush()
}
