// Package container is a thin client over a local Docker-compatible
// container engine (Docker or Podman). It covers the handful of lifecycle
// calls the orchestrator needs and reports failures as sentinel errors.
package container

import (
	"context"
	"errors"
)

var (
	// ErrRuntimeUnavailable is returned by Connect when no engine socket
	// answers a ping.
	ErrRuntimeUnavailable = errors.New("no container runtime available")
	ErrListFailed         = errors.New("container list failed")
	ErrInspectFailed      = errors.New("container inspect failed")
	ErrCreateFailed       = errors.New("container create failed")
	ErrStartFailed        = errors.New("container start failed")
	ErrStopFailed         = errors.New("container stop failed")
	ErrRemoveFailed       = errors.New("container remove failed")
)

// Runtime is the set of container operations the orchestrator depends on.
// All calls are synchronous; none are retried.
type Runtime interface {
	// List returns containers, in any state, whose name starts with prefix.
	List(ctx context.Context, prefix string) ([]Info, error)
	// Inspect returns the declared environment and run state of id.
	Inspect(ctx context.Context, id string) (Info, error)
	// Create creates (but does not start) a container and returns its ID.
	Create(ctx context.Context, spec Spec) (string, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error
	// Remove deletes id; force also kills a running container.
	Remove(ctx context.Context, id string, force bool) error
	Close() error
}

// Info describes one container.
type Info struct {
	ID      string
	Name    string // without the leading "/"
	State   string // engine-reported state, e.g. "running", "exited"
	Running bool
	Env     map[string]string
}

// Spec describes a container to create.
type Spec struct {
	Name  string
	Image string
	Env   map[string]string
	// Port is the RPC port the process inside listens on. The container
	// runs with host networking; the port is only declared as exposed.
	Port int
}
