package compose

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"github.com/docker/go-connections/nat"
	"gopkg.in/yaml.v3"
)

// ErrNoServices indicates a manifest that defines no services.
var ErrNoServices = errors.New("compose manifest defines no services")

// Manifest is the subset of a parsed compose file the launcher cares
// about: service names, images, and published ports.
type Manifest struct {
	Path     string
	Services []Service
}

// Service is one compose service.
type Service struct {
	Name  string
	Image string
	Ports []Port
}

// Port is a published port mapping.
type Port struct {
	Published uint16
	Target    uint32
	Protocol  string
}

// LoadManifest reads and parses a compose file.
func LoadManifest(ctx context.Context, path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading compose file: %w", err)
	}
	return parseManifest(ctx, path, data)
}

func parseManifest(ctx context.Context, path string, data []byte) (*Manifest, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if dict == nil {
		return nil, fmt.Errorf("parsing %s: empty manifest", path)
	}

	project, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Filename: path,
				Content:  data,
				Config:   dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("irisctl", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		// Stacks reference local build contexts and env files that need
		// not exist on the machine running the launcher.
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	m := &Manifest{Path: path}
	for name, svc := range project.Services {
		converted := Service{
			Name:  name,
			Image: svc.Image,
		}
		for _, p := range svc.Ports {
			published, err := strconv.ParseUint(p.Published, 10, 16)
			if err != nil {
				// Ranges and unpublished ports are not probe targets.
				continue
			}
			proto := p.Protocol
			if proto == "" {
				proto = "tcp"
			}
			converted.Ports = append(converted.Ports, Port{
				Published: uint16(published),
				Target:    p.Target,
				Protocol:  proto,
			})
		}
		m.Services = append(m.Services, converted)
	}
	sort.Slice(m.Services, func(i, j int) bool { return m.Services[i].Name < m.Services[j].Name })
	return m, nil
}

// ProbeAddrs returns the deduplicated host:port addresses of all published
// TCP ports, suitable for readiness dialing.
func (m *Manifest) ProbeAddrs(host string) []string {
	seen := make(map[string]bool)
	var addrs []string
	for _, svc := range m.Services {
		for _, p := range svc.Ports {
			port, err := nat.NewPort(p.Protocol, strconv.Itoa(int(p.Published)))
			if err != nil || port.Proto() != "tcp" {
				continue
			}
			addr := net.JoinHostPort(host, port.Port())
			if seen[addr] {
				continue
			}
			seen[addr] = true
			addrs = append(addrs, addr)
		}
	}
	sort.Strings(addrs)
	return addrs
}
