// Package docker wraps the Docker client with the stack-level queries the
// CLI needs: daemon health and per-project container listings.
package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// composeProjectLabel is set by docker compose on every container it manages.
const composeProjectLabel = "com.docker.compose.project"

// composeServiceLabel names the compose service a container belongs to.
const composeServiceLabel = "com.docker.compose.service"

// Client wraps the Docker API client.
type Client struct {
	cli *client.Client
}

// NewClient creates a Docker client from the environment.
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	return &Client{cli: cli}, nil
}

// Close releases Docker client resources.
func (c *Client) Close() error {
	return c.cli.Close()
}

// Ping verifies the Docker daemon is accessible.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon not accessible: %w", err)
	}
	return nil
}

// ServerVersion returns the daemon version string.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	v, err := c.cli.ServerVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("querying docker version: %w", err)
	}
	return v.Version, nil
}

// ContainerInfo describes one container of a compose project.
type ContainerInfo struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Service string    `json:"service"`
	Image   string    `json:"image"`
	State   string    `json:"state"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
	Ports   []string  `json:"ports,omitempty"`
}

// StackContainers lists all containers (including stopped ones) belonging
// to a compose project.
func (c *Client) StackContainers(ctx context.Context, project string) ([]ContainerInfo, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", composeProjectLabel+"="+project)),
	})
	if err != nil {
		return nil, fmt.Errorf("listing containers for project %s: %w", project, err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		name := ""
		if len(ctr.Names) > 0 {
			name = strings.TrimPrefix(ctr.Names[0], "/")
		}
		result = append(result, ContainerInfo{
			ID:      shortID(ctr.ID),
			Name:    name,
			Service: ctr.Labels[composeServiceLabel],
			Image:   ctr.Image,
			State:   ctr.State,
			Status:  ctr.Status,
			Created: time.Unix(ctr.Created, 0),
			Ports:   formatPorts(ctr.Ports),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Service < result[j].Service })
	return result, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// formatPorts renders port mappings the way docker ps does, deduplicated
// across IPv4/IPv6 bindings.
func formatPorts(ports []container.Port) []string {
	seen := make(map[string]bool)
	var result []string
	for _, p := range ports {
		var s string
		if p.PublicPort > 0 {
			s = fmt.Sprintf("%d->%d/%s", p.PublicPort, p.PrivatePort, p.Type)
		} else {
			s = fmt.Sprintf("%d/%s", p.PrivatePort, p.Type)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}
