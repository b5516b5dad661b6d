// Package protocol defines the messages exchanged between the orchestrator
// and its agent workers, the worker lifecycle states, and the naming and
// environment conventions both sides agree on.
package protocol

import (
	"context"
	"time"
)

// AgentState represents the lifecycle state of an agent worker.
type AgentState string

// Agent state constants.
const (
	AgentIdle  AgentState = "idle"
	AgentBusy  AgentState = "busy"  // an Invoke is in flight
	AgentError AgentState = "error" // last Invoke failed; further Invokes are accepted
)

// Valid reports whether s is one of the known lifecycle states.
func (s AgentState) Valid() bool {
	switch s {
	case AgentIdle, AgentBusy, AgentError:
		return true
	default:
		return false
	}
}

// InvokeRequest carries text for the agent's conversational session.
type InvokeRequest struct {
	InvocationID string `cbor:"invocation_id" json:"invocation_id"`
	Text         string `cbor:"text" json:"text"`
}

// InvokeResponse is the agent's reply to an InvokeRequest. When Success is
// false, Error holds the upstream failure and Result is empty.
type InvokeResponse struct {
	InvocationID string `cbor:"invocation_id" json:"invocation_id"`
	Result       string `cbor:"result" json:"result"`
	Success      bool   `cbor:"success" json:"success"`
	Error        string `cbor:"error" json:"error,omitempty"`
}

// StatusRequest asks an agent for its current state.
type StatusRequest struct{}

// StatusResponse is a consistent snapshot of an agent's state.
// LastInvocation is empty until the first successful Invoke; otherwise it
// is an RFC 3339 timestamp.
type StatusResponse struct {
	Name           string     `cbor:"name" json:"name"`
	State          AgentState `cbor:"state" json:"state"`
	Invocations    int        `cbor:"invocations" json:"invocations"`
	LastInvocation string     `cbor:"last_invocation" json:"last_invocation,omitempty"`
}

// LastInvocationTime parses LastInvocation. ok is false when the agent has
// never completed an invocation or the timestamp is malformed.
func (s StatusResponse) LastInvocationTime() (t time.Time, ok bool) {
	if s.LastInvocation == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s.LastInvocation)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HistoryRequest asks for the last Lines chat-log entries; zero means all.
type HistoryRequest struct {
	Lines int `cbor:"lines" json:"lines"`
}

// HistoryResponse holds chat-log entries, oldest first.
type HistoryResponse struct {
	History []string `cbor:"history" json:"history"`
}

// TerminateRequest asks the agent process to exit.
type TerminateRequest struct {
	Reason string `cbor:"reason" json:"reason"`
}

// TerminateResponse acknowledges a TerminateRequest. The process exits
// shortly after the response is sent.
type TerminateResponse struct {
	Success bool   `cbor:"success" json:"success"`
	Message string `cbor:"message" json:"message"`
}

// AgentService is implemented by the worker process.
type AgentService interface {
	Invoke(ctx context.Context, req *InvokeRequest) (*InvokeResponse, error)
	GetStatus(ctx context.Context, req *StatusRequest) (*StatusResponse, error)
	GetHistory(ctx context.Context, req *HistoryRequest) (*HistoryResponse, error)
	Terminate(ctx context.Context, req *TerminateRequest) (*TerminateResponse, error)
}

// AgentClient is the orchestrator-side handle to one agent.
type AgentClient interface {
	Invoke(ctx context.Context, text string) (*InvokeResponse, error)
	Status(ctx context.Context) (*StatusResponse, error)
	History(ctx context.Context, lines int) ([]string, error)
	Terminate(ctx context.Context, reason string) error
	Close() error
}
