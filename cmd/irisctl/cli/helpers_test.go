package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/irislabs/irisctl/internal/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectName_Configured(t *testing.T) {
	got, err := projectName(stack.Stack{Project: "iris"})
	require.NoError(t, err)
	assert.Equal(t, "iris", got)
}

func TestProjectName_DerivedFromDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "IRIS_App")
	require.NoError(t, os.Mkdir(dir, 0755))
	t.Chdir(dir)

	got, err := projectName(stack.Stack{})
	require.NoError(t, err)
	assert.Equal(t, "iris_app", got)
}

func TestProjectName_StripsInvalidRunes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "My Project!")
	require.NoError(t, os.Mkdir(dir, 0755))
	t.Chdir(dir)

	got, err := projectName(stack.Stack{})
	require.NoError(t, err)
	assert.Equal(t, "myproject", got)
}

func TestResolveStack_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	st, cfg, err := resolveStack(nil)
	require.NoError(t, err)
	assert.Nil(t, cfg)
	assert.Equal(t, stack.EnvDev, st.Env)
	assert.Equal(t, "docker-compose.dev.yml", st.File)

	st, _, err = resolveStack([]string{"prod"})
	require.NoError(t, err)
	assert.Equal(t, stack.EnvProd, st.Env)
	assert.Equal(t, "docker-compose.yml", st.File)
}

func TestResolveStack_InvalidEnv(t *testing.T) {
	_, _, err := resolveStack([]string{"staging"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown environment "staging"`)
}

func TestResolveStack_ConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgYAML := `
project: iris
environments:
  dev:
    file: compose/dev.yml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "irisctl.yaml"), []byte(cfgYAML), 0644))
	t.Chdir(dir)

	st, cfg, err := resolveStack([]string{"dev"})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "compose/dev.yml", st.File)
	assert.Equal(t, "iris", st.Project)
}

func TestNewComposeCLI_NilConfig(t *testing.T) {
	assert.NotNil(t, newComposeCLI(nil))
}
