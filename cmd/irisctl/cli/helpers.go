package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/irislabs/irisctl/internal/compose"
	"github.com/irislabs/irisctl/internal/config"
	"github.com/irislabs/irisctl/internal/stack"
)

// resolveStack parses the optional environment argument and applies
// irisctl.yaml overrides from the current directory.
func resolveStack(args []string) (stack.Stack, *config.Config, error) {
	envArg := ""
	if len(args) > 0 {
		envArg = args[0]
	}
	env, err := stack.ParseEnv(envArg)
	if err != nil {
		return stack.Stack{}, nil, err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return stack.Stack{}, nil, err
	}

	return stack.Resolve(env, cfg), cfg, nil
}

// composeExecutor overrides the compose process runner (for testing).
var composeExecutor compose.Executor

// newComposeCLI builds the compose wrapper, honoring a compose_bin override.
func newComposeCLI(cfg *config.Config) *compose.CLI {
	var bin []string
	if cfg != nil {
		bin = cfg.ComposeBin
	}
	return compose.NewCLI(compose.CLIOptions{Bin: bin, Executor: composeExecutor})
}

var projectNameInvalid = regexp.MustCompile(`[^a-z0-9_-]`)

// projectName resolves the compose project name: the configured name when
// set, otherwise compose's own default of the normalized directory name.
func projectName(st stack.Stack) (string, error) {
	if st.Project != "" {
		return st.Project, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	name := projectNameInvalid.ReplaceAllString(strings.ToLower(filepath.Base(cwd)), "")
	name = strings.TrimLeft(name, "_-")
	if name == "" {
		return "", fmt.Errorf("cannot derive a compose project name from %q: set 'project' in irisctl.yaml", cwd)
	}
	return name, nil
}
