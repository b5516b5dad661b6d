package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"sorcerer/pkg/orchestrator"
	"sorcerer/pkg/protocol"
)

// fakeFleet records calls and returns canned answers.
type fakeFleet struct {
	mu        sync.Mutex
	failing   map[string]error
	connected []string
	all       []string
	reply     string
	invokeErr error
	history   []string
	views     []orchestrator.View
	polls     int

	created []string
	removed []string
	told    []string
	closed  bool
}

func (f *fakeFleet) run(names []string, record *[]string) []orchestrator.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]orchestrator.Outcome, len(names))
	for i, n := range names {
		*record = append(*record, n)
		out[i] = orchestrator.Outcome{Name: n, Err: f.failing[n]}
	}
	return out
}

func (f *fakeFleet) CreateMany(_ context.Context, names []string) []orchestrator.Outcome {
	return f.run(names, &f.created)
}

func (f *fakeFleet) RemoveMany(_ context.Context, names []string) []orchestrator.Outcome {
	return f.run(names, &f.removed)
}

func (f *fakeFleet) List() []string  { return f.connected }
func (f *fakeFleet) Names() []string { return f.all }

func (f *fakeFleet) Invoke(_ context.Context, name, text string) (string, error) {
	f.told = append(f.told, name+"|"+text)
	return f.reply, f.invokeErr
}

func (f *fakeFleet) History(_ context.Context, _ string, n int) ([]string, error) {
	if n > 0 && n < len(f.history) {
		return f.history[len(f.history)-n:], nil
	}
	return f.history, nil
}

func (f *fakeFleet) Overview(context.Context, int) []orchestrator.View {
	f.mu.Lock()
	f.polls++
	f.mu.Unlock()
	return f.views
}

func (f *fakeFleet) Close() error {
	f.closed = true
	return nil
}

// runCLI executes the root command against f and returns stdout.
func runCLI(t *testing.T, f *fakeFleet, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.stderr = io.Discard
	opened := 0
	a.openFleet = func(context.Context, *zap.SugaredLogger) (fleet, error) {
		opened++
		return f, nil
	}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if opened > 0 && !f.closed {
		t.Error("fleet was not closed")
	}
	return out.String(), err
}

func TestCreate_SummaryAndFailures(t *testing.T) {
	f := &fakeFleet{failing: map[string]error{"b": errors.New("agent b already exists")}}
	out, err := runCLI(t, f, "create", "a", "b", "c")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, want := range []string{
		"Creating agent a...",
		"Agent a has answered your call!",
		"Failed to create b: agent b already exists",
		"Summary: 2/3 agents created successfully",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCreate_SingleNameHasNoSummary(t *testing.T) {
	out, err := runCLI(t, &fakeFleet{}, "create", "solo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if strings.Contains(out, "Summary") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestCreate_NoNamesPrintsHint(t *testing.T) {
	f := &fakeFleet{}
	out, err := runCLI(t, f, "create")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "No agent names provided") {
		t.Errorf("output = %q", out)
	}
	if len(f.created) != 0 {
		t.Errorf("created = %v", f.created)
	}
}

func TestRm_All(t *testing.T) {
	f := &fakeFleet{all: []string{"x", "y"}, connected: []string{"x"}}
	out, err := runCLI(t, f, "rm", "-a")
	if err != nil {
		t.Fatalf("rm: %v", err)
	}
	if fmt.Sprint(f.removed) != "[x y]" {
		t.Errorf("removed = %v, want unreachable agents too", f.removed)
	}
	if !strings.Contains(out, "Summary: 2/2 agents removed successfully") {
		t.Errorf("output:\n%s", out)
	}
}

func TestRm_NothingToDo(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"rm"}, "No agent names provided (use -a for all)"},
		{[]string{"rm", "--all"}, "No agents to remove"},
	}
	for _, tt := range tests {
		out, err := runCLI(t, &fakeFleet{}, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%v output = %q, want %q", tt.args, out, tt.want)
		}
	}
}

func TestList(t *testing.T) {
	out, _ := runCLI(t, &fakeFleet{connected: []string{"alpha", "beta"}}, "list")
	if !strings.Contains(out, "🧙 alpha\n🧙 beta\n") {
		t.Errorf("output:\n%s", out)
	}
	out, _ = runCLI(t, &fakeFleet{}, "list")
	if !strings.Contains(out, "The realm is empty") {
		t.Errorf("empty output:\n%s", out)
	}
}

func TestTell(t *testing.T) {
	f := &fakeFleet{reply: "aye"}
	out, err := runCLI(t, f, "tell", "bob", "fetch", "water")
	if err != nil {
		t.Fatalf("tell: %v", err)
	}
	if out != "aye\n" || f.told[0] != "bob|fetch water" {
		t.Errorf("out = %q, told = %v", out, f.told)
	}

	f = &fakeFleet{invokeErr: orchestrator.ErrNotConnected}
	out, err = runCLI(t, f, "tell", "bob", "hi")
	if err != nil {
		t.Fatalf("failed tell must still exit 0: %v", err)
	}
	if !strings.Contains(out, "Failed to tell bob") {
		t.Errorf("out = %q", out)
	}
}

func TestTell_ArgsRequired(t *testing.T) {
	if _, err := runCLI(t, &fakeFleet{}, "tell", "bob"); err == nil {
		t.Error("tell with no text must be an argument error")
	}
}

func TestHistory(t *testing.T) {
	f := &fakeFleet{history: []string{"Sorcerer: hi", "bob: hello", "Sorcerer: bye", "bob: later"}}
	out, err := runCLI(t, f, "history", "bob", "-n", "2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if out != "Sorcerer: bye\nbob: later\n" {
		t.Errorf("out = %q", out)
	}
}

func TestPs(t *testing.T) {
	f := &fakeFleet{views: []orchestrator.View{{
		Status: protocol.StatusResponse{
			Name:           "bob",
			State:          protocol.AgentIdle,
			Invocations:    3,
			LastInvocation: "2026-01-02T03:04:05Z",
		},
		History: []string{"Sorcerer: hi", "bob: hello"},
	}}}
	out, err := runCLI(t, f, "ps")
	if err != nil {
		t.Fatalf("ps: %v", err)
	}
	for _, want := range []string{"Agent: bob", "State: idle", "Invocations: 3", "Last Message: ", "Recent Chat History:", "bob: hello"} {
		if !strings.Contains(out, want) {
			t.Errorf("ps output missing %q:\n%s", want, out)
		}
	}

	out, _ = runCLI(t, &fakeFleet{}, "ps")
	if !strings.Contains(out, "No agents found.") {
		t.Errorf("empty ps:\n%s", out)
	}
}

func TestOpenFleetErrorIsReturned(t *testing.T) {
	a := newApp()
	a.stderr = io.Discard
	a.openFleet = func(context.Context, *zap.SugaredLogger) (fleet, error) {
		return nil, errors.New("no container runtime")
	}
	cmd := newRootCmd(a)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"list"})
	if err := cmd.Execute(); err == nil {
		t.Error("want error when the runtime is unreachable")
	}
}

func TestLogLevelFlagValidated(t *testing.T) {
	if _, err := runCLI(t, &fakeFleet{}, "--log-level", "loud", "list"); err == nil {
		t.Error("invalid --log-level must fail")
	}
}

func TestAgentCommandIsHidden(t *testing.T) {
	cmd := newRootCmd(newApp())
	agent, _, err := cmd.Find([]string{"agent"})
	if err != nil || !agent.Hidden {
		t.Errorf("agent command: hidden=%v err=%v", agent != nil && agent.Hidden, err)
	}
}

func TestDashModel(t *testing.T) {
	f := &fakeFleet{views: []orchestrator.View{{Status: protocol.StatusResponse{Name: "bob", State: protocol.AgentBusy}}}}
	m := newDashModel(context.Background(), f, 2)
	if !strings.Contains(m.View(), "No agents found.") {
		t.Errorf("initial view:\n%s", m.View())
	}

	msg := m.fetchCmd()()
	next, _ := m.Update(msg)
	view := next.View()
	if !strings.Contains(view, "Agent: bob") || !strings.Contains(view, "1 agents") {
		t.Errorf("view after fetch:\n%s", view)
	}

	_, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q must quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not produce QuitMsg")
	}
}

func TestDashModel_OnePollInFlight(t *testing.T) {
	f := &fakeFleet{}
	m := newDashModel(context.Background(), f, 2)
	m.every = time.Millisecond

	// The initial poll has not answered yet: a tick only reschedules.
	next, cmd := m.Update(tickMsg(time.Now()))
	if _, ok := cmd().(tickMsg); !ok {
		t.Error("tick during a poll must only reschedule")
	}
	if _, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd != nil {
		t.Error("manual refresh during a poll must be ignored")
	}
	if f.polls != 0 {
		t.Errorf("polls = %d, want 0", f.polls)
	}

	// Once the poll answers, the next tick starts a new one.
	next, _ = next.Update(viewsMsg{at: time.Now()})
	next, cmd = next.Update(tickMsg(time.Now()))
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("tick after a poll must fetch and reschedule")
	}
	for _, c := range batch {
		if msg, ok := c().(viewsMsg); ok {
			next, _ = next.Update(msg)
		}
	}
	if f.polls != 1 {
		t.Errorf("polls = %d, want 1", f.polls)
	}
	if next.(dashModel).loading {
		t.Error("model still loading after the poll answered")
	}
}
