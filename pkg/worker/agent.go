package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"sorcerer/pkg/llm"
	"sorcerer/pkg/protocol"
)

// Executor interprets a model response in autonomous mode. It returns the
// text to hand back to the caller: a rendered report when the response is
// a command batch, otherwise the response unchanged.
type Executor interface {
	Process(ctx context.Context, response string) string
}

// Prompt supplies the current system prompt.
type Prompt interface {
	Current() string
}

// StaticPrompt is a fixed system prompt.
type StaticPrompt string

// Current implements Prompt.
func (p StaticPrompt) Current() string { return string(p) }

// Agent implements protocol.AgentService for one named agent.
//
// Invocations are serialized by invokeMu, so two Invokes never interleave.
// State fields are guarded by mu, which is held only briefly; GetStatus and
// GetHistory therefore answer while an Invoke is in flight and can observe
// the busy state.
type Agent struct {
	name     string
	model    llm.Client
	executor Executor
	prompt   Prompt
	log      *zap.SugaredLogger
	now      func() time.Time
	exit     func()
	grace    time.Duration

	invokeMu sync.Mutex

	mu          sync.Mutex
	state       protocol.AgentState
	invocations int
	last        time.Time
	chat        *ChatLog

	terminate sync.Once
}

var _ protocol.AgentService = (*Agent)(nil)

// Option customizes an Agent.
type Option func(*Agent)

// WithExecutor enables autonomous mode.
func WithExecutor(e Executor) Option {
	return func(a *Agent) { a.executor = e }
}

// WithPrompt sets the system prompt used in autonomous mode.
func WithPrompt(p Prompt) Option {
	return func(a *Agent) { a.prompt = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *Agent) { a.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// WithExit overrides the function called after Terminate's grace delay.
func WithExit(exit func()) Option {
	return func(a *Agent) { a.exit = exit }
}

// WithTerminateGrace overrides the delay between acknowledging Terminate
// and exiting.
func WithTerminateGrace(d time.Duration) Option {
	return func(a *Agent) { a.grace = d }
}

// NewAgent creates an idle agent with an empty chat log.
func NewAgent(name string, model llm.Client, opts ...Option) *Agent {
	a := &Agent{
		name:  name,
		model: model,
		log:   zap.NewNop().Sugar(),
		now:   time.Now,
		exit:  func() { os.Exit(0) },
		grace: protocol.TerminateGrace,
		state: protocol.AgentIdle,
		chat:  NewChatLog(protocol.MaxHistoryEntries),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Named("agent").With("agent", name)
	return a
}

// Autonomous reports whether responses are run through the executor.
func (a *Agent) Autonomous() bool {
	return a.executor != nil
}

func (a *Agent) setState(s protocol.AgentState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Invoke sends text plus the chat log to the model. On success the turn
// (request and raw model response) is appended to the chat log; in
// autonomous mode the returned result is the executor's output. On model
// failure the agent enters the error state and the chat log is untouched.
func (a *Agent) Invoke(ctx context.Context, req *protocol.InvokeRequest) (*protocol.InvokeResponse, error) {
	a.invokeMu.Lock()
	defer a.invokeMu.Unlock()

	log := a.log.With("invocation_id", req.InvocationID)
	log.Infow("invocation started")
	a.setState(protocol.AgentBusy)

	var system string
	if a.executor != nil && a.prompt != nil {
		system = a.prompt.Current()
	}

	raw, err := a.model.Complete(ctx, llm.Request{
		System:  system,
		History: a.chat.Last(0),
		Text:    req.Text,
	})
	if err != nil {
		a.setState(protocol.AgentError)
		log.Errorw("invocation failed", "error", err)
		return &protocol.InvokeResponse{
			InvocationID: req.InvocationID,
			Success:      false,
			Error:        err.Error(),
		}, nil
	}

	result := raw
	if a.executor != nil {
		result = a.executor.Process(ctx, raw)
	}

	a.mu.Lock()
	a.chat.AppendTurn(protocol.RequesterLine(req.Text), protocol.AgentLine(a.name, raw))
	a.invocations++
	a.last = a.now()
	a.state = protocol.AgentIdle
	a.mu.Unlock()

	log.Infow("invocation finished")
	return &protocol.InvokeResponse{
		InvocationID: req.InvocationID,
		Result:       result,
		Success:      true,
	}, nil
}

// GetStatus returns a snapshot of the agent's state.
func (a *Agent) GetStatus(_ context.Context, _ *protocol.StatusRequest) (*protocol.StatusResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	resp := &protocol.StatusResponse{
		Name:        a.name,
		State:       a.state,
		Invocations: a.invocations,
	}
	if !a.last.IsZero() {
		resp.LastInvocation = a.last.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// GetHistory returns the last req.Lines chat-log entries, or all of them
// when Lines is zero.
func (a *Agent) GetHistory(_ context.Context, req *protocol.HistoryRequest) (*protocol.HistoryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := req.Lines
	if n < 0 {
		n = 0
	}
	return &protocol.HistoryResponse{History: a.chat.Last(n)}, nil
}

// Terminate acknowledges immediately and schedules exit after the grace
// delay. Repeated calls schedule exit once.
func (a *Agent) Terminate(_ context.Context, req *protocol.TerminateRequest) (*protocol.TerminateResponse, error) {
	a.log.Infow("terminating", "reason", req.Reason)
	a.terminate.Do(func() {
		time.AfterFunc(a.grace, a.exit)
	})
	return &protocol.TerminateResponse{
		Success: true,
		Message: fmt.Sprintf("Fading away into the ether... (%s)", req.Reason),
	}, nil
}
