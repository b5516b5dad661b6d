package orchestrator

import (
	"context"
	"strings"
	"sync"

	"sorcerer/pkg/config"
	"sorcerer/pkg/protocol"
	"sorcerer/pkg/registry"
	"sorcerer/pkg/rpc"
)

// Discover rebuilds the registry from containers carrying the agent name
// prefix. Every such container is registered, so stopped or unreachable
// agents can still be removed. Only running containers are dialed; a
// failed dial leaves the record without a client and is not retried.
func (o *Orchestrator) Discover(ctx context.Context) error {
	found, err := o.rt.List(ctx, protocol.ContainerPrefix)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, c := range found {
		name := strings.TrimPrefix(c.Name, protocol.ContainerPrefix)

		port := protocol.DefaultPort
		if info, err := o.rt.Inspect(ctx, c.ID); err != nil {
			o.log.Warnw("inspect failed, assuming default port", "container", c.Name, "error", err)
		} else {
			port = config.PortFromEnv(info.Env)
		}

		if !registry.ValidateName(name) {
			o.reg.Observe(port)
			o.log.Warnw("ignoring container with invalid agent name", "container", c.Name)
			continue
		}

		rec := registry.Record{Name: name, ContainerID: c.ID, Port: port}
		if !c.Running {
			o.reg.Attach(rec)
			o.log.Infow("discovered stopped agent", "agent", name, "port", port, "state", c.State)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			client, err := o.dial(ctx, name, rpc.Addr(port))
			if err != nil {
				o.log.Warnw("discovered agent is unreachable", "agent", name, "port", port, "error", err)
			}
			rec.Client = client
			o.reg.Attach(rec)
			o.log.Infow("discovered agent", "agent", name, "port", port, "connected", client != nil)
		}()
	}
	wg.Wait()
	return nil
}
