package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"sorcerer/pkg/config"
	"sorcerer/pkg/container"
	"sorcerer/pkg/logging"
	"sorcerer/pkg/orchestrator"
)

// fleet is the slice of the orchestrator the CLI drives.
type fleet interface {
	CreateMany(ctx context.Context, names []string) []orchestrator.Outcome
	RemoveMany(ctx context.Context, names []string) []orchestrator.Outcome
	List() []string
	Names() []string
	Invoke(ctx context.Context, name, text string) (string, error)
	History(ctx context.Context, name string, n int) ([]string, error)
	Overview(ctx context.Context, lines int) []orchestrator.View
	Close() error
}

var _ fleet = (*orchestrator.Orchestrator)(nil)

// app carries process-wide state shared by subcommands.
type app struct {
	logLevel string
	log      *zap.SugaredLogger
	stderr   io.Writer

	// openFleet connects to the container runtime and runs discovery.
	// Tests replace it with a fake.
	openFleet func(ctx context.Context, log *zap.SugaredLogger) (fleet, error)
}

func newApp() *app {
	return &app{
		log:       logging.Nop(),
		stderr:    os.Stderr,
		openFleet: openOrchestrator,
	}
}

// setupLogger builds the CLI logger from --log-level.
func (a *app) setupLogger() error {
	log, err := logging.New(logging.Options{Level: a.logLevel, Output: a.stderr})
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// withFleet opens the fleet, runs fn and closes the fleet.
func (a *app) withFleet(ctx context.Context, fn func(fleet) error) error {
	f, err := a.openFleet(ctx, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			a.log.Debugw("close fleet", "error", cerr)
		}
	}()
	return fn(f)
}

func openOrchestrator(ctx context.Context, log *zap.SugaredLogger) (fleet, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	rt, err := container.Connect(ctx, log)
	if err != nil {
		return nil, err
	}
	o, err := orchestrator.New(ctx, rt, orchestrator.DialRPC, cfg, orchestrator.WithLogger(log))
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	return o, nil
}
