package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sorcerer/pkg/commands"
	"sorcerer/pkg/config"
	"sorcerer/pkg/llm"
	"sorcerer/pkg/logging"
	"sorcerer/pkg/memory"
	"sorcerer/pkg/rpc"
	"sorcerer/pkg/worker"
)

var _ worker.Executor = (*commands.Engine)(nil)

// newAgentCmd creates the hidden "srcrr agent" subcommand, the process
// that runs inside each agent container.
func newAgentCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:    "agent",
		Short:  "Run an agent process",
		Long:   "Serves the agent RPC service. Configuration comes from the environment\n(AGENT_NAME, GRPC_PORT, ANTHROPIC_API_KEY, ...).\n\nThis command is started inside agent containers, not by humans.",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.AgentFromEnv()
			if err != nil {
				return err
			}
			log, err := logging.New(logging.Options{Level: cfg.LogLevel})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return runAgent(cmd.Context(), cfg, log)
		},
	}
}

// runAgent serves the agent until ctx is cancelled or the agent is told
// to terminate.
func runAgent(ctx context.Context, cfg config.Agent, log *zap.SugaredLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log = log.With("agent", cfg.Name)
	if cfg.APIKey == "" {
		log.Warn("ANTHROPIC_API_KEY not set; invocations will fail")
	}

	model := llm.NewAnthropic(llm.AnthropicConfig{APIKey: cfg.APIKey, Model: cfg.Model})
	opts := []worker.Option{
		worker.WithLogger(log),
		worker.WithExit(cancel),
	}

	if cfg.Autonomous {
		store, err := openMemory(ctx, cfg.MemoryDB)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		workdir := cfg.Workdir
		if workdir == "" {
			if workdir, err = os.Getwd(); err != nil {
				return fmt.Errorf("resolve workdir: %w", err)
			}
		}
		engine := commands.NewEngine(
			commands.WithWorkdir(workdir),
			commands.WithMemory(store),
			commands.WithLogger(log),
		)

		prompt, err := systemPrompt(ctx, cfg.SystemPromptFile, log)
		if err != nil {
			return err
		}
		opts = append(opts, worker.WithExecutor(engine), worker.WithPrompt(prompt))
	}

	agent := worker.NewAgent(cfg.Name, model, opts...)
	log.Infow("agent starting", "port", cfg.Port, "autonomous", agent.Autonomous(), "model", cfg.Model)

	srv := rpc.NewServer(agent, log)
	return srv.ListenAndServe(ctx, ":"+strconv.Itoa(cfg.Port))
}

// openMemory opens the SQLite store at path, or an in-process map when
// path is empty.
func openMemory(ctx context.Context, path string) (memory.Store, error) {
	if path == "" {
		return memory.NewMapStore(), nil
	}
	store, err := memory.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open memory %s: %w", path, err)
	}
	return store, nil
}

// systemPrompt returns the built-in prompt, or the override file kept
// current by a watcher bound to ctx.
func systemPrompt(ctx context.Context, path string, log *zap.SugaredLogger) (worker.Prompt, error) {
	if path == "" {
		return worker.StaticPrompt(worker.DefaultSystemPrompt), nil
	}
	p, err := worker.LoadPromptFile(path, log)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := p.Watch(ctx); err != nil {
			log.Warnw("system prompt watch stopped", "error", err)
		}
	}()
	return p, nil
}
