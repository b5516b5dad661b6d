// Package orchestrator manages the agent fleet: it rebuilds its registry
// from the container runtime at startup, creates and removes agent
// containers, and proxies requests to agents over RPC.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"sorcerer/pkg/config"
	"sorcerer/pkg/container"
	"sorcerer/pkg/protocol"
	"sorcerer/pkg/registry"
	"sorcerer/pkg/rpc"
)

// Dialer connects to the agent name listening at addr.
type Dialer func(ctx context.Context, name, addr string) (protocol.AgentClient, error)

// DialRPC is the production Dialer.
func DialRPC(ctx context.Context, name, addr string) (protocol.AgentClient, error) {
	c, err := rpc.Dial(ctx, name, addr)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Orchestrator owns the agent registry. All methods are safe for
// concurrent use; RPC calls are made without holding the registry lock.
type Orchestrator struct {
	rt    container.Runtime
	reg   *registry.Registry
	dial  Dialer
	cfg   config.Config
	log   *zap.SugaredLogger
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithSleep replaces the readiness wait, for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = fn }
}

// New builds an Orchestrator and runs discovery. Discovery problems with
// individual containers are logged, not returned; only a failed container
// listing aborts construction.
func New(ctx context.Context, rt container.Runtime, dial Dialer, cfg config.Config, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		rt:    rt,
		reg:   registry.New(cfg.StartingPort),
		dial:  dial,
		cfg:   cfg,
		log:   zap.NewNop().Sugar(),
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.Named("orchestrator")

	if err := o.Discover(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Registry exposes the underlying registry for inspection.
func (o *Orchestrator) Registry() *registry.Registry {
	return o.reg
}

// agentEnv builds the launch environment for a new agent.
func (o *Orchestrator) agentEnv(name string, port int) map[string]string {
	env := make(map[string]string, len(o.cfg.Env)+4)
	for k, v := range o.cfg.Env {
		env[k] = v
	}
	env[protocol.EnvAgentName] = name
	env[protocol.EnvPort] = strconv.Itoa(port)
	env[protocol.EnvAPIKey] = o.cfg.APIKey
	if o.cfg.Autonomous {
		env[protocol.EnvAutonomous] = "true"
	}
	return env
}

// Create launches a new agent container and connects to it.
//
// The name and port are reserved under the registry lock before any
// container work, so concurrent creates of the same name cannot both
// proceed. If the container starts but the RPC connect fails, the agent
// stays registered without a client and the error is returned; the
// container keeps running and can be removed.
func (o *Orchestrator) Create(ctx context.Context, name string) error {
	if !registry.ValidateName(name) {
		return fmt.Errorf("%w: %q (names must be 1-32 characters of letters, digits, '-' or '_')", ErrInvalidName, name)
	}
	if o.cfg.APIKey == "" {
		return ErrMissingAPIKey
	}

	port, err := o.reg.Reserve(name)
	if err != nil {
		return err
	}
	log := o.log.With("agent", name, "port", port)
	log.Infow("creating agent")

	id, err := o.rt.Create(ctx, container.Spec{
		Name:  protocol.ContainerName(name),
		Image: o.cfg.Image,
		Env:   o.agentEnv(name, port),
		Port:  port,
	})
	if err != nil {
		o.reg.Release(name)
		return err
	}

	if err := o.rt.Start(ctx, id); err != nil {
		if rmErr := o.rt.Remove(ctx, id, true); rmErr != nil {
			log.Warnw("cleanup of unstarted container failed", "container", id, "error", rmErr)
		}
		o.reg.Release(name)
		return err
	}

	addr := rpc.Addr(port)
	var client protocol.AgentClient
	if err = o.sleep(ctx, o.cfg.ReadyDelay); err == nil {
		client, err = o.dial(ctx, name, addr)
	}
	if commitErr := o.reg.Commit(name, id, client); commitErr != nil {
		return commitErr
	}
	if err != nil {
		log.Warnw("agent started but is unreachable", "addr", addr, "error", err)
		return fmt.Errorf("agent %s started but not reachable: %w", name, err)
	}

	log.Infow("agent created", "container", id)
	return nil
}

// Remove tears an agent down: a best-effort RPC terminate, a stop whose
// failure is only logged, then a forced remove. The registry entry is
// dropped before any of those steps, so the name is gone afterwards even
// if the container calls fail. Only the final remove's failure is
// returned.
func (o *Orchestrator) Remove(ctx context.Context, name string) error {
	rec, err := o.reg.Take(name)
	if err != nil {
		return err
	}
	log := o.log.With("agent", name, "container", rec.ContainerID)

	if rec.Client != nil {
		if err := rec.Client.Terminate(ctx, protocol.TerminateReason); err != nil {
			log.Debugw("terminate failed", "error", err)
		}
		_ = rec.Client.Close()
	}

	if err := o.rt.Stop(ctx, rec.ContainerID); err != nil {
		log.Warnw("failed to stop container gracefully", "error", err)
	}
	if err := o.rt.Remove(ctx, rec.ContainerID, true); err != nil {
		return err
	}

	log.Infow("agent removed")
	return nil
}

// List returns the sorted names of agents with a live RPC client.
func (o *Orchestrator) List() []string {
	return o.reg.Connected()
}

// Names returns every registered agent, reachable or not.
func (o *Orchestrator) Names() []string {
	return o.reg.Names()
}

func (o *Orchestrator) connected(name string) (protocol.AgentClient, error) {
	rec, ok := o.reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if rec.Client == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, name)
	}
	return rec.Client, nil
}

// Invoke sends text to an agent and returns its reply. An agent-reported
// failure is returned as a *protocol.InvokeFailedError.
func (o *Orchestrator) Invoke(ctx context.Context, name, text string) (string, error) {
	client, err := o.connected(name)
	if err != nil {
		return "", err
	}

	resp, err := client.Invoke(ctx, text)
	if err != nil {
		return "", err
	}
	o.log.Debugw("invocation finished", "agent", name, "invocation_id", resp.InvocationID, "success", resp.Success)
	if !resp.Success {
		return "", &protocol.InvokeFailedError{Worker: name, InvocationID: resp.InvocationID, Message: resp.Error}
	}
	return resp.Result, nil
}

// History returns the last n chat-log entries of an agent (all if n is 0).
func (o *Orchestrator) History(ctx context.Context, name string, n int) ([]string, error) {
	if n < 0 {
		n = 0
	}
	client, err := o.connected(name)
	if err != nil {
		return nil, err
	}
	return client.History(ctx, n)
}

// StatusAll queries every connected agent concurrently. Agents that fail
// to answer are logged and omitted. The result is sorted by name.
func (o *Orchestrator) StatusAll(ctx context.Context) []protocol.StatusResponse {
	views := o.fanOut(ctx, func(ctx context.Context, v *View, c protocol.AgentClient) error {
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		v.Status = *st
		return nil
	})
	out := make([]protocol.StatusResponse, len(views))
	for i, v := range views {
		out[i] = v.Status
	}
	return out
}

// View is an agent's status plus its recent history.
type View struct {
	Status  protocol.StatusResponse
	History []string
}

// Overview fetches status and the last lines history entries from every
// connected agent concurrently. Agents failing either call are omitted.
func (o *Orchestrator) Overview(ctx context.Context, lines int) []View {
	return o.fanOut(ctx, func(ctx context.Context, v *View, c protocol.AgentClient) error {
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		v.Status = *st
		if lines > 0 {
			h, err := c.History(ctx, lines)
			if err != nil {
				return err
			}
			v.History = h
		}
		return nil
	})
}

// fanOut runs fn against every connected agent in parallel and waits for
// all of them. Failed agents are dropped from the result.
func (o *Orchestrator) fanOut(ctx context.Context, fn func(context.Context, *View, protocol.AgentClient) error) []View {
	var targets []registry.Record
	for _, rec := range o.reg.Snapshot() {
		if rec.Connected() {
			targets = append(targets, rec)
		}
	}

	views := make([]View, len(targets))
	ok := make([]bool, len(targets))
	var wg sync.WaitGroup
	for i, rec := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx, &views[i], rec.Client); err != nil {
				o.log.Warnw("agent query failed", "agent", rec.Name, "error", err)
				return
			}
			if views[i].Status.Name == "" {
				views[i].Status.Name = rec.Name
			}
			ok[i] = true
		}()
	}
	wg.Wait()

	out := make([]View, 0, len(views))
	for i, v := range views {
		if ok[i] {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status.Name < out[j].Status.Name })
	return out
}

// Close releases all RPC clients and the runtime connection.
func (o *Orchestrator) Close() error {
	for _, rec := range o.reg.Snapshot() {
		if rec.Client != nil {
			_ = rec.Client.Close()
		}
	}
	return o.rt.Close()
}
