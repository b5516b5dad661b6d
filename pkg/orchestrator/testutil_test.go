package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"sorcerer/pkg/config"
	"sorcerer/pkg/container"
	"sorcerer/pkg/orchestrator"
	"sorcerer/pkg/protocol"
	"sorcerer/pkg/rpc"
)

// fakeRuntime is an in-memory container.Runtime.
type fakeRuntime struct {
	mu         sync.Mutex
	containers map[string]*fakeContainer // by ID
	seq        int
	calls      []string

	createErr error
	startErr  error
	stopErr   error
	removeErr error
	listErr   error

	inspectErr map[string]error // by ID
}

type fakeContainer struct {
	info container.Info
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{containers: make(map[string]*fakeContainer)}
}

func (f *fakeRuntime) record(call string) {
	f.calls = append(f.calls, call)
}

// seed adds a pre-existing container.
func (f *fakeRuntime) seed(name string, running bool, env map[string]string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("seed-%d", f.seq)
	state := "exited"
	if running {
		state = "running"
	}
	f.containers[id] = &fakeContainer{info: container.Info{
		ID: id, Name: name, State: state, Running: running, Env: env,
	}}
	return id
}

func (f *fakeRuntime) List(_ context.Context, prefix string) ([]container.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []container.Info
	for _, c := range f.containers {
		if strings.HasPrefix(c.info.Name, prefix) {
			out = append(out, c.info)
		}
	}
	return out, nil
}

func (f *fakeRuntime) Inspect(_ context.Context, id string) (container.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.inspectErr[id]; err != nil {
		return container.Info{}, err
	}
	c, ok := f.containers[id]
	if !ok {
		return container.Info{}, fmt.Errorf("%w: %s", container.ErrInspectFailed, id)
	}
	return c.info, nil
}

func (f *fakeRuntime) Create(_ context.Context, spec container.Spec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create " + spec.Name)
	if f.createErr != nil {
		return "", f.createErr
	}
	f.seq++
	id := fmt.Sprintf("c-%d", f.seq)
	f.containers[id] = &fakeContainer{info: container.Info{ID: id, Name: spec.Name, State: "created", Env: spec.Env}}
	return id, nil
}

func (f *fakeRuntime) Start(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("start " + id)
	if f.startErr != nil {
		return f.startErr
	}
	c := f.containers[id]
	c.info.Running, c.info.State = true, "running"
	return nil
}

func (f *fakeRuntime) Stop(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop " + id)
	if f.stopErr != nil {
		return f.stopErr
	}
	if c, ok := f.containers[id]; ok {
		c.info.Running, c.info.State = false, "exited"
	}
	return nil
}

func (f *fakeRuntime) Remove(_ context.Context, id string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove " + id)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.containers, id)
	return nil
}

func (f *fakeRuntime) Close() error { return nil }

func (f *fakeRuntime) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.containers)
}

func (f *fakeRuntime) envOf(name string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.containers {
		if c.info.Name == name {
			return c.info.Env
		}
	}
	return nil
}

// fakeClient is an in-memory protocol.AgentClient.
type fakeClient struct {
	name string

	mu         sync.Mutex
	invokeErr  error
	statusErr  error
	reply      *protocol.InvokeResponse
	history    []string
	terminated []string
	closed     bool
}

func (c *fakeClient) Invoke(_ context.Context, text string) (*protocol.InvokeResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invokeErr != nil {
		return nil, c.invokeErr
	}
	if c.reply != nil {
		return c.reply, nil
	}
	return &protocol.InvokeResponse{InvocationID: "inv-1", Result: c.name + " heard " + text, Success: true}, nil
}

func (c *fakeClient) Status(context.Context) (*protocol.StatusResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	return &protocol.StatusResponse{Name: c.name, State: protocol.AgentIdle}, nil
}

func (c *fakeClient) History(_ context.Context, lines int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.history
	if lines > 0 && lines < len(h) {
		h = h[len(h)-lines:]
	}
	return h, nil
}

func (c *fakeClient) Terminate(_ context.Context, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminated = append(c.terminated, reason)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// fakeDialer hands out fakeClients and fails for names in unreachable.
type fakeDialer struct {
	mu          sync.Mutex
	clients     map[string]*fakeClient
	addrs       map[string]string
	unreachable map[string]bool
}

func newFakeDialer(unreachable ...string) *fakeDialer {
	d := &fakeDialer{
		clients:     make(map[string]*fakeClient),
		addrs:       make(map[string]string),
		unreachable: make(map[string]bool),
	}
	for _, n := range unreachable {
		d.unreachable[n] = true
	}
	return d
}

func (d *fakeDialer) Dial(_ context.Context, name, addr string) (protocol.AgentClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addrs[name] = addr
	if d.unreachable[name] {
		return nil, &protocol.WorkerUnreachableError{Worker: name, Addr: addr, Reason: "connection refused", Err: rpc.ErrUnreachable}
	}
	c := &fakeClient{name: name}
	d.clients[name] = c
	return c, nil
}

func (d *fakeDialer) client(name string) *fakeClient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clients[name]
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.APIKey = "sk-test"
	cfg.ReadyDelay = time.Second
	return cfg
}

func noSleep(context.Context, time.Duration) error { return nil }

func newTestOrchestrator(t *testing.T, rt *fakeRuntime, d *fakeDialer) *orchestrator.Orchestrator {
	t.Helper()
	o, err := orchestrator.New(context.Background(), rt, d.Dial, testConfig(), orchestrator.WithSleep(noSleep))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o
}

var errBoom = errors.New("boom")
