// Package compose drives the docker compose CLI and parses compose
// manifests. All process execution goes through the Executor seam so
// command construction can be verified without a docker installation.
package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultBin is the compose invocation prefix. Older installs can override
// this with ["docker-compose"] via config.
var DefaultBin = []string{"docker", "compose"}

// ExitError reports a compose invocation that exited non-zero.
type ExitError struct {
	Argv []string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", strings.Join(e.Argv, " "), e.Code)
}

// Executor runs a single external command.
type Executor interface {
	// Run executes argv, streaming output to stdout/stderr. A non-zero
	// exit status is reported as *ExitError.
	Run(ctx context.Context, argv []string, stdout, stderr io.Writer) error
	// Output executes argv and returns its captured standard output.
	Output(ctx context.Context, argv []string) (string, error)
}

// execExecutor shells out via os/exec.
type execExecutor struct{}

func (execExecutor) Run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Argv: argv, Code: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", argv[0], err)
	}
	return nil
}

func (execExecutor) Output(ctx context.Context, argv []string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &ExitError{Argv: argv, Code: exitErr.ExitCode()}
	}
	if err != nil {
		return "", fmt.Errorf("running %s: %w", argv[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CLIOptions configures a CLI. Zero values select defaults.
type CLIOptions struct {
	// Bin is the compose invocation prefix (default: DefaultBin).
	Bin []string
	// Executor runs the constructed commands (default: os/exec).
	Executor Executor
	// Stdout and Stderr receive streamed compose output
	// (default: the process's stdout/stderr).
	Stdout io.Writer
	Stderr io.Writer
}

// CLI builds and runs docker compose invocations against a single
// compose file and optional project name.
type CLI struct {
	bin    []string
	exec   Executor
	stdout io.Writer
	stderr io.Writer
}

// NewCLI creates a compose CLI wrapper.
func NewCLI(opts CLIOptions) *CLI {
	c := &CLI{
		bin:    opts.Bin,
		exec:   opts.Executor,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}
	if len(c.bin) == 0 {
		c.bin = DefaultBin
	}
	if c.exec == nil {
		c.exec = execExecutor{}
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	return c
}

// argv builds the full command line for a compose subcommand. The -f and -p
// flags are emitted only when set so the default file and project name
// resolution of compose itself still applies.
func (c *CLI) argv(file, project, sub string, extra ...string) []string {
	argv := append([]string{}, c.bin...)
	if file != "" {
		argv = append(argv, "-f", file)
	}
	if project != "" {
		argv = append(argv, "-p", project)
	}
	argv = append(argv, sub)
	return append(argv, extra...)
}

// UpOptions configures Up.
type UpOptions struct {
	// Build forces image rebuild (--build).
	Build bool
	// Detach starts the stack in the background (-d).
	Detach bool
}

// Up builds and starts the stack described by file.
func (c *CLI) Up(ctx context.Context, file, project string, opts UpOptions) error {
	var extra []string
	if opts.Build {
		extra = append(extra, "--build")
	}
	if opts.Detach {
		extra = append(extra, "-d")
	}
	return c.exec.Run(ctx, c.argv(file, project, "up", extra...), c.stdout, c.stderr)
}

// DownOptions configures Down.
type DownOptions struct {
	// Volumes also removes named volumes (-v).
	Volumes bool
}

// Down stops and removes the stack described by file.
func (c *CLI) Down(ctx context.Context, file, project string, opts DownOptions) error {
	var extra []string
	if opts.Volumes {
		extra = append(extra, "-v")
	}
	return c.exec.Run(ctx, c.argv(file, project, "down", extra...), c.stdout, c.stderr)
}

// PS prints the container status table for the stack described by file.
func (c *CLI) PS(ctx context.Context, file, project string) error {
	return c.exec.Run(ctx, c.argv(file, project, "ps"), c.stdout, c.stderr)
}

// LogsOptions configures Logs.
type LogsOptions struct {
	// Follow streams new output as it arrives (-f).
	Follow bool
	// Tail limits output to the last N lines per container (0 = all).
	Tail int
}

// Logs prints container logs for the stack, optionally limited to services.
func (c *CLI) Logs(ctx context.Context, file, project string, services []string, opts LogsOptions) error {
	var extra []string
	if opts.Follow {
		extra = append(extra, "-f")
	}
	if opts.Tail > 0 {
		extra = append(extra, "--tail", strconv.Itoa(opts.Tail))
	}
	extra = append(extra, services...)
	return c.exec.Run(ctx, c.argv(file, project, "logs", extra...), c.stdout, c.stderr)
}

// Version returns the compose CLI version string, e.g. for diagnostics.
func (c *CLI) Version(ctx context.Context) (string, error) {
	argv := append(append([]string{}, c.bin...), "version", "--short")
	return c.exec.Output(ctx, argv)
}
