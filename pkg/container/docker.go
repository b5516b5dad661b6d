package container

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"go.uber.org/zap"
)

// pingTimeout bounds each liveness probe in the connect chain.
const pingTimeout = 2 * time.Second

// engine is the subset of the Docker SDK client used here.
type engine interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}

var _ engine = (*client.Client)(nil)

// Docker implements Runtime over the Docker Engine API. Podman's
// compatibility socket speaks the same API.
type Docker struct {
	api  engine
	host string
	log  *zap.SugaredLogger
}

var _ Runtime = (*Docker)(nil)

// candidate is one entry in the connect chain. An empty host means the
// Docker defaults from the environment.
type candidate struct {
	label string
	host  string
}

// socketCandidates lists engine endpoints in preference order: rootless
// Podman, system Podman, then Docker's environment defaults.
func socketCandidates(getenv func(string) string) []candidate {
	var cs []candidate
	if dir := getenv("XDG_RUNTIME_DIR"); dir != "" {
		cs = append(cs, candidate{
			label: "podman (rootless)",
			host:  "unix://" + filepath.Join(dir, "podman", "podman.sock"),
		})
	}
	cs = append(cs,
		candidate{label: "podman (system)", host: "unix:///run/podman/podman.sock"},
		candidate{label: "docker", host: ""},
	)
	return cs
}

func newEngine(host string) (engine, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if host == "" {
		opts = append(opts, client.FromEnv)
	} else {
		opts = append(opts, client.WithHost(host))
	}
	return client.NewClientWithOpts(opts...)
}

// Connect returns a client for the first engine in the chain that answers
// a ping, or ErrRuntimeUnavailable.
func Connect(ctx context.Context, log *zap.SugaredLogger) (*Docker, error) {
	return connect(ctx, socketCandidates(os.Getenv), newEngine, log)
}

func connect(ctx context.Context, cands []candidate, dial func(string) (engine, error), log *zap.SugaredLogger) (*Docker, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("container")

	var tried []string
	for _, c := range cands {
		tried = append(tried, c.label)
		api, err := dial(c.host)
		if err != nil {
			log.Debugw("runtime client construction failed", "runtime", c.label, "error", err)
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		_, err = api.Ping(pctx)
		cancel()
		if err != nil {
			log.Debugw("runtime did not answer ping", "runtime", c.label, "host", c.host, "error", err)
			_ = api.Close()
			continue
		}
		log.Debugw("connected to runtime", "runtime", c.label, "host", c.host)
		return &Docker{api: api, host: c.host, log: log}, nil
	}
	return nil, fmt.Errorf("%w (tried %s)", ErrRuntimeUnavailable, strings.Join(tried, ", "))
}

// Host returns the engine endpoint in use; empty means Docker defaults.
func (d *Docker) Host() string { return d.host }

// List implements Runtime.
func (d *Docker) List(ctx context.Context, prefix string) ([]Info, error) {
	cs, err := d.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", prefix)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListFailed, err)
	}

	// The engine's name filter is a substring match; keep true prefixes.
	var out []Info
	for _, c := range cs {
		name := primaryName(c.Names)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		out = append(out, Info{
			ID:      c.ID,
			Name:    name,
			State:   c.State,
			Running: c.State == "running",
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func primaryName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}

// Inspect implements Runtime.
func (d *Docker) Inspect(ctx context.Context, id string) (Info, error) {
	j, err := d.api.ContainerInspect(ctx, id)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %w", ErrInspectFailed, id, err)
	}
	info := Info{ID: id}
	if j.ContainerJSONBase != nil {
		info.ID = j.ID
		info.Name = strings.TrimPrefix(j.Name, "/")
		if j.State != nil {
			info.State = j.State.Status
			info.Running = j.State.Running
		}
	}
	if j.Config != nil {
		info.Env = envToMap(j.Config.Env)
	}
	return info, nil
}

// Create implements Runtime.
func (d *Docker) Create(ctx context.Context, spec Spec) (string, error) {
	exposed := nat.PortSet{}
	for _, p := range exposedPorts(spec.Port) {
		exposed[p] = struct{}{}
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Env:          envToList(spec.Env),
		ExposedPorts: exposed,
	}
	hostCfg := &container.HostConfig{
		NetworkMode: "host",
	}

	resp, err := d.api.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCreateFailed, spec.Name, err)
	}
	for _, w := range resp.Warnings {
		d.log.Warnw("create warning", "container", spec.Name, "warning", w)
	}
	return resp.ID, nil
}

// exposedPorts declares the default RPC port and, if different, the
// allocated one.
func exposedPorts(port int) []nat.Port {
	ports := []nat.Port{"50051/tcp"}
	if port > 0 && port != 50051 {
		ports = append(ports, nat.Port(strconv.Itoa(port)+"/tcp"))
	}
	return ports
}

// Start implements Runtime.
func (d *Docker) Start(ctx context.Context, id string) error {
	if err := d.api.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStartFailed, id, err)
	}
	return nil
}

// Stop implements Runtime.
func (d *Docker) Stop(ctx context.Context, id string) error {
	if err := d.api.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStopFailed, id, err)
	}
	return nil
}

// Remove implements Runtime.
func (d *Docker) Remove(ctx context.Context, id string, force bool) error {
	if err := d.api.ContainerRemove(ctx, id, container.RemoveOptions{Force: force}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRemoveFailed, id, err)
	}
	return nil
}

// Close releases the engine client.
func (d *Docker) Close() error {
	return d.api.Close()
}

// envToMap parses KEY=VALUE entries. Entries without '=' map to "".
func envToMap(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		if k == "" {
			continue
		}
		m[k] = v
	}
	return m
}

// envToList renders env as sorted KEY=VALUE entries.
func envToList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
