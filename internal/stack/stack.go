// Package stack defines the dev and prod compose environments and the
// launcher that brings them up, waits for readiness, and reports status.
package stack

import (
	"fmt"
	"time"

	"github.com/irislabs/irisctl/internal/config"
	"github.com/irislabs/irisctl/internal/ready"
)

// Env selects a stack environment.
type Env string

const (
	EnvDev  Env = "dev"
	EnvProd Env = "prod"
)

// ParseEnv parses a CLI environment argument. Empty defaults to dev.
func ParseEnv(s string) (Env, error) {
	switch s {
	case "", "dev":
		return EnvDev, nil
	case "prod":
		return EnvProd, nil
	default:
		return "", fmt.Errorf("unknown environment %q: must be 'dev' or 'prod'", s)
	}
}

// Description returns the long-form environment name.
func (e Env) Description() string {
	if e == EnvProd {
		return "production"
	}
	return "development"
}

// Endpoint is one entry in the printed endpoint summary.
type Endpoint struct {
	// Name is the human label.
	Name string `json:"name"`
	// URL is what gets printed.
	URL string `json:"url"`
	// Probe is an optional host:port readiness target, used when the
	// compose manifest cannot be parsed.
	Probe string `json:"probe,omitempty"`
}

// Stack is a fully resolved environment: which compose file to use, how to
// wait for readiness, and what to print once the stack is up.
type Stack struct {
	Env     Env
	File    string
	Project string

	// Settle, when non-zero, replaces readiness probing with a fixed wait.
	Settle time.Duration

	// SettleFallback is the fixed wait used when probing is disabled
	// without an explicit duration and when no probe targets exist.
	// 10s for dev, 15s for prod, matching the original launcher scripts.
	SettleFallback time.Duration

	// ReadyTimeout bounds readiness probing.
	ReadyTimeout time.Duration

	Endpoints []Endpoint
}

const (
	devFile  = "docker-compose.dev.yml"
	prodFile = "docker-compose.yml"

	devSettleFallback  = 10 * time.Second
	prodSettleFallback = 15 * time.Second
)

func defaultEndpoints(env Env) []Endpoint {
	if env == EnvProd {
		return []Endpoint{
			{Name: "Application", URL: "http://localhost:80", Probe: "localhost:80"},
			{Name: "Admin", URL: "http://localhost:80/admin"},
		}
	}
	return []Endpoint{
		{Name: "Application", URL: "http://localhost:8000", Probe: "localhost:8000"},
		{Name: "API docs", URL: "http://localhost:8000/docs"},
		{Name: "PostgreSQL", URL: "localhost:5432", Probe: "localhost:5432"},
		{Name: "Redis", URL: "localhost:6379", Probe: "localhost:6379"},
	}
}

// Resolve builds the Stack for env, applying irisctl.yaml overrides. A nil
// cfg means pure defaults.
func Resolve(env Env, cfg *config.Config) Stack {
	st := Stack{
		Env:            env,
		File:           devFile,
		SettleFallback: devSettleFallback,
		ReadyTimeout:   ready.DefaultTimeout,
		Endpoints:      defaultEndpoints(env),
	}
	if env == EnvProd {
		st.File = prodFile
		st.SettleFallback = prodSettleFallback
	}

	if cfg != nil {
		st.Project = cfg.Project
	}
	override := cfg.Env(string(env))
	if override.File != "" {
		st.File = override.File
	}
	if override.Settle > 0 {
		st.Settle = override.Settle.Std()
	}
	if override.ReadyTimeout > 0 {
		st.ReadyTimeout = override.ReadyTimeout.Std()
	}
	if len(override.Endpoints) > 0 {
		st.Endpoints = nil
		for _, ep := range override.Endpoints {
			st.Endpoints = append(st.Endpoints, Endpoint{Name: ep.Name, URL: ep.URL, Probe: ep.Probe})
		}
	}
	return st
}

// ProbeAddrs returns the deduplicated probe targets from the endpoint table.
func (s Stack) ProbeAddrs() []string {
	seen := make(map[string]bool)
	var addrs []string
	for _, ep := range s.Endpoints {
		if ep.Probe == "" || seen[ep.Probe] {
			continue
		}
		seen[ep.Probe] = true
		addrs = append(addrs, ep.Probe)
	}
	return addrs
}
