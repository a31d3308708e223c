// Package config handles irisctl.yaml parsing. The file is optional; it
// overrides compose file paths, the project name, and readiness behavior
// per environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents an irisctl.yaml file.
type Config struct {
	// Project is the compose project name (-p). Empty means compose's own
	// default, derived from the directory name.
	Project string `yaml:"project,omitempty"`

	// ComposeBin overrides the compose invocation prefix, e.g.
	// ["docker-compose"] for legacy standalone installs.
	ComposeBin []string `yaml:"compose_bin,omitempty"`

	// Environments overrides per-environment settings. Keys are "dev" and
	// "prod".
	Environments map[string]EnvConfig `yaml:"environments,omitempty"`
}

// EnvConfig overrides settings for one environment.
type EnvConfig struct {
	// File is the compose file for this environment.
	File string `yaml:"file,omitempty"`

	// Settle disables readiness probing in favor of a fixed wait of this
	// duration after `up` returns, e.g. "10s".
	Settle Duration `yaml:"settle,omitempty"`

	// ReadyTimeout bounds readiness probing (default 30s).
	ReadyTimeout Duration `yaml:"ready_timeout,omitempty"`

	// Endpoints replaces the built-in endpoint summary for this
	// environment.
	Endpoints []Endpoint `yaml:"endpoints,omitempty"`
}

// Endpoint is one entry in the printed endpoint summary.
type Endpoint struct {
	// Name is the human label, e.g. "Application".
	Name string `yaml:"name"`
	// URL is what gets printed, e.g. "http://localhost:8000".
	URL string `yaml:"url"`
	// Probe is an optional host:port readiness target.
	Probe string `yaml:"probe,omitempty"`
}

// Duration wraps time.Duration with yaml string parsing ("10s", "1m30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads irisctl.yaml from dir. Returns (nil, nil) if no file exists.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "irisctl.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading irisctl.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing irisctl.yaml: %w", err)
	}

	for name, env := range cfg.Environments {
		if name != "dev" && name != "prod" {
			return nil, fmt.Errorf("unknown environment %q in irisctl.yaml: must be 'dev' or 'prod'", name)
		}
		for _, ep := range env.Endpoints {
			if ep.Name == "" || ep.URL == "" {
				return nil, fmt.Errorf("environment %q: endpoints need both 'name' and 'url'", name)
			}
		}
	}

	return &cfg, nil
}

// Env returns the override block for an environment name, or a zero value.
func (c *Config) Env(name string) EnvConfig {
	if c == nil {
		return EnvConfig{}
	}
	return c.Environments[name]
}
