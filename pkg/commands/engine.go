package commands

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"sorcerer/pkg/memory"
)

// Default limits.
const (
	DefaultExecTimeout  = 5 * time.Minute
	DefaultFetchTimeout = 30 * time.Second
	DefaultFetchLimit   = 1 << 20
)

// Engine executes command batches. Side effects are real: files are
// written and deleted and processes are run with the agent's privileges.
// An Engine is safe for concurrent use, though the agent serializes
// invocations anyway.
type Engine struct {
	workdir     string
	memory      memory.Store
	plans       *plans
	http        *http.Client
	execTimeout time.Duration
	fetchLimit  int64
	log         *zap.SugaredLogger
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithWorkdir resolves relative paths against dir and runs Exec there.
func WithWorkdir(dir string) EngineOption {
	return func(e *Engine) { e.workdir = dir }
}

// WithMemory sets the store behind Remember and Recall.
func WithMemory(s memory.Store) EngineOption {
	return func(e *Engine) { e.memory = s }
}

// WithHTTPClient sets the client used by WebFetch.
func WithHTTPClient(c *http.Client) EngineOption {
	return func(e *Engine) { e.http = c }
}

// WithFetchLimit caps how many body bytes WebFetch keeps.
func WithFetchLimit(n int64) EngineOption {
	return func(e *Engine) { e.fetchLimit = n }
}

// WithExecTimeout bounds each Exec command.
func WithExecTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.execTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine returns an Engine with an in-process memory store.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		memory:      memory.NewMapStore(),
		plans:       newPlans(),
		http:        &http.Client{Timeout: DefaultFetchTimeout},
		execTimeout: DefaultExecTimeout,
		fetchLimit:  DefaultFetchLimit,
		log:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("commands")
	return e
}

// Process runs response as a command batch and returns the rendered
// report. A response that is not a batch is returned unchanged and
// nothing is executed.
func (e *Engine) Process(ctx context.Context, response string) string {
	cmds, ok := ParseBatch(response)
	if !ok {
		return response
	}
	return RenderAll(e.Execute(ctx, cmds))
}

// Execute runs cmds strictly in order and returns one result per command.
// A failing command does not stop the batch.
func (e *Engine) Execute(ctx context.Context, cmds []Command) []Result {
	results := make([]Result, 0, len(cmds))
	for i, cmd := range cmds {
		r := e.execute(ctx, cmd)
		r.Command = cmd.Kind()
		if !r.OK() {
			e.log.Infow("command failed", "index", i, "cmd", cmd.Kind(), "error", r.Text)
		} else {
			e.log.Debugw("command done", "index", i, "cmd", cmd.Kind())
		}
		results = append(results, r)
	}
	return results
}

func (e *Engine) execute(ctx context.Context, cmd Command) Result {
	switch c := cmd.(type) {
	case Read:
		return e.read(c)
	case Write:
		return e.write(c)
	case Edit:
		return e.edit(c)
	case Delete:
		return e.delete(c)
	case Exec:
		return e.exec(ctx, c)
	case List:
		return e.list(c)
	case Search:
		return e.search(ctx, c)
	case Think:
		e.log.Infow("thinking", "reasoning", c.Reasoning)
		return none(KindThink)
	case Plan:
		return e.plan(c)
	case UpdatePlan:
		return e.updatePlan(c)
	case Remember:
		return e.remember(ctx, c)
	case Recall:
		return e.recall(ctx, c)
	case WebFetch:
		return e.webFetch(ctx, c)
	case Parse:
		return parseData(c)
	case Status:
		e.status(c)
		return none(KindStatus)
	case Report:
		r := report(c)
		e.log.Infow("report generated", "title", c.Title, "sections", len(c.Sections))
		return r
	default:
		return failure(cmd.Kind(), "unsupported command %s", cmd.Kind())
	}
}

// resolve makes a relative path relative to the working directory.
func (e *Engine) resolve(path string) string {
	if e.workdir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.workdir, path)
}

func (e *Engine) status(c Status) {
	switch c.Level {
	case LevelWarning:
		e.log.Warn(c.Message)
	case LevelError:
		e.log.Error(c.Message)
	case LevelSuccess:
		e.log.Info("✓ " + c.Message)
	default:
		e.log.Info(c.Message)
	}
}
