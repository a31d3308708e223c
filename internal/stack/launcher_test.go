package stack

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/irislabs/irisctl/internal/compose"
	"github.com/irislabs/irisctl/internal/ready"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingExec captures compose invocations; failOn makes the matching
// subcommand exit non-zero.
type recordingExec struct {
	commands [][]string
	failOn   string
}

func (r *recordingExec) Run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	r.commands = append(r.commands, argv)
	for _, a := range argv {
		if a == r.failOn {
			return &compose.ExitError{Argv: argv, Code: 1}
		}
	}
	return nil
}

func (r *recordingExec) Output(ctx context.Context, argv []string) (string, error) {
	r.commands = append(r.commands, argv)
	return "", nil
}

type testLauncher struct {
	*Launcher
	exec   *recordingExec
	out    *bytes.Buffer
	slept  []time.Duration
	waited [][]string
}

func newTestLauncher(t *testing.T) *testLauncher {
	t.Helper()
	tl := &testLauncher{
		exec: &recordingExec{},
		out:  &bytes.Buffer{},
	}
	tl.Launcher = NewLauncher(compose.NewCLI(compose.CLIOptions{
		Executor: tl.exec,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}))
	tl.Out = tl.out
	tl.Sleep = func(d time.Duration) { tl.slept = append(tl.slept, d) }
	tl.Wait = func(ctx context.Context, addrs []string, opts ready.Options) error {
		tl.waited = append(tl.waited, addrs)
		return nil
	}
	return tl
}

func TestUp_DevSequence(t *testing.T) {
	tl := newTestLauncher(t)
	st := Resolve(EnvDev, nil)

	err := tl.Up(context.Background(), st, UpOptions{})
	require.NoError(t, err)

	require.Len(t, tl.exec.commands, 2)
	assert.Equal(t,
		[]string{"docker", "compose", "-f", "docker-compose.dev.yml", "up", "--build", "-d"},
		tl.exec.commands[0])
	assert.Equal(t,
		[]string{"docker", "compose", "-f", "docker-compose.dev.yml", "ps"},
		tl.exec.commands[1])

	out := tl.out.String()
	assert.Contains(t, out, "development environment is ready")
	assert.Contains(t, out, "8000")
	assert.Contains(t, out, "5432")
	assert.Contains(t, out, "6379")
}

func TestUp_ProdSequence(t *testing.T) {
	tl := newTestLauncher(t)
	st := Resolve(EnvProd, nil)

	err := tl.Up(context.Background(), st, UpOptions{})
	require.NoError(t, err)

	require.Len(t, tl.exec.commands, 2)
	assert.Equal(t,
		[]string{"docker", "compose", "-f", "docker-compose.yml", "up", "--build", "-d"},
		tl.exec.commands[0])
	assert.Equal(t,
		[]string{"docker", "compose", "-f", "docker-compose.yml", "ps"},
		tl.exec.commands[1])

	out := tl.out.String()
	assert.Contains(t, out, "production environment is ready")
	assert.Contains(t, out, "80")
	assert.Contains(t, out, "/admin")
}

func TestUp_NoBuild(t *testing.T) {
	tl := newTestLauncher(t)
	st := Resolve(EnvDev, nil)

	err := tl.Up(context.Background(), st, UpOptions{NoBuild: true})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"docker", "compose", "-f", "docker-compose.dev.yml", "up", "-d"},
		tl.exec.commands[0])
}

func TestUp_ComposeFailureAborts(t *testing.T) {
	tl := newTestLauncher(t)
	tl.exec.failOn = "up"
	st := Resolve(EnvDev, nil)

	err := tl.Up(context.Background(), st, UpOptions{})
	require.Error(t, err)

	var exitErr *compose.ExitError
	assert.True(t, errors.As(err, &exitErr))

	// No status query, no "ready" output after a failed start.
	assert.Len(t, tl.exec.commands, 1)
	assert.Empty(t, tl.out.String())
}

func TestUp_StatusFailureAborts(t *testing.T) {
	tl := newTestLauncher(t)
	tl.exec.failOn = "ps"
	st := Resolve(EnvDev, nil)

	err := tl.Up(context.Background(), st, UpOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
	assert.Empty(t, tl.out.String())
}

func TestUp_ProbeFailureAborts(t *testing.T) {
	tl := newTestLauncher(t)
	tl.Wait = func(ctx context.Context, addrs []string, opts ready.Options) error {
		return errors.New("not ready after 30s: localhost:8000")
	}
	st := Resolve(EnvDev, nil)

	err := tl.Up(context.Background(), st, UpOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waiting for development stack")

	// up ran, ps did not.
	assert.Len(t, tl.exec.commands, 1)
	assert.Empty(t, tl.out.String())
}

func TestUp_ExplicitSettleSkipsProbing(t *testing.T) {
	tl := newTestLauncher(t)
	st := Resolve(EnvDev, nil)

	err := tl.Up(context.Background(), st, UpOptions{Settle: 20 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{20 * time.Second}, tl.slept)
	assert.Empty(t, tl.waited)
}

func TestUp_NoProbeUsesScriptFallback(t *testing.T) {
	tl := newTestLauncher(t)

	dev := Resolve(EnvDev, nil)
	require.NoError(t, tl.Up(context.Background(), dev, UpOptions{NoProbe: true}))
	assert.Equal(t, []time.Duration{10 * time.Second}, tl.slept)

	tl2 := newTestLauncher(t)
	prod := Resolve(EnvProd, nil)
	require.NoError(t, tl2.Up(context.Background(), prod, UpOptions{NoProbe: true}))
	assert.Equal(t, []time.Duration{15 * time.Second}, tl2.slept)
}

func TestUp_ProbesManifestPorts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "docker-compose.dev.yml")
	manifest := `
services:
  web:
    image: iris/web
    ports:
      - "8000:8000"
  db:
    image: postgres:16
    ports:
      - "5432:5432"
`
	require.NoError(t, os.WriteFile(file, []byte(manifest), 0644))

	tl := newTestLauncher(t)
	st := Resolve(EnvDev, nil)
	st.File = file

	err := tl.Up(context.Background(), st, UpOptions{})
	require.NoError(t, err)

	require.Len(t, tl.waited, 1)
	assert.Equal(t, []string{"localhost:5432", "localhost:8000"}, tl.waited[0])
}

func TestUp_FallsBackToEndpointProbes(t *testing.T) {
	tl := newTestLauncher(t)
	st := Resolve(EnvDev, nil)
	st.File = filepath.Join(t.TempDir(), "missing.yml")

	err := tl.Up(context.Background(), st, UpOptions{})
	require.NoError(t, err)

	require.Len(t, tl.waited, 1)
	assert.Contains(t, tl.waited[0], "localhost:8000")
	assert.Contains(t, tl.waited[0], "localhost:5432")
	assert.Contains(t, tl.waited[0], "localhost:6379")
}

func TestDown(t *testing.T) {
	tl := newTestLauncher(t)
	st := Resolve(EnvProd, nil)

	err := tl.Down(context.Background(), st, DownOptions{Volumes: true})
	require.NoError(t, err)

	require.Len(t, tl.exec.commands, 1)
	assert.Equal(t,
		[]string{"docker", "compose", "-f", "docker-compose.yml", "down", "-v"},
		tl.exec.commands[0])
}

func TestPrintEndpoints(t *testing.T) {
	tl := newTestLauncher(t)
	tl.PrintEndpoints(Resolve(EnvDev, nil))

	out := tl.out.String()
	assert.Contains(t, out, "Application")
	assert.Contains(t, out, "http://localhost:8000")
	assert.Contains(t, out, "PostgreSQL")
	assert.Contains(t, out, "Redis")
}
