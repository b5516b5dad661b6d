package protocol

import (
	"errors"
	"fmt"
)

// ErrInvokeFailed is matched by errors.Is for any *InvokeFailedError.
var ErrInvokeFailed = errors.New("tell failed")

// WorkerUnreachableError represents a failure to reach an agent's RPC server.
// It enables typed error discrimination for connectivity issues via errors.As.
type WorkerUnreachableError struct {
	Worker string
	Addr   string
	Reason string // Human-readable failure reason (e.g., "connection refused")
	Err    error
}

func (e *WorkerUnreachableError) Error() string {
	return fmt.Sprintf("agent %s unreachable at %s: %s", e.Worker, e.Addr, e.Reason)
}

func (e *WorkerUnreachableError) Unwrap() error {
	return e.Err
}

// InvokeFailedError is returned when an agent answers an Invoke with
// success=false. Message is the agent-reported error text.
type InvokeFailedError struct {
	Worker       string
	InvocationID string
	Message      string
}

func (e *InvokeFailedError) Error() string {
	return fmt.Sprintf("tell failed: %s", e.Message)
}

func (e *InvokeFailedError) Unwrap() error {
	return ErrInvokeFailed
}
