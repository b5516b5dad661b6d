package orchestrator

import (
	"errors"

	"sorcerer/pkg/protocol"
	"sorcerer/pkg/registry"
)

// Sentinel errors. Callers discriminate with errors.Is.
var (
	ErrInvalidName   = registry.ErrInvalidName
	ErrAlreadyExists = registry.ErrAlreadyExists
	ErrNotFound      = registry.ErrNotFound

	// ErrNotConnected means the agent's container exists but no RPC
	// client is attached.
	ErrNotConnected = errors.New("agent not connected")

	// ErrInvokeFailed wraps an agent-reported invocation failure.
	ErrInvokeFailed = protocol.ErrInvokeFailed

	// ErrMissingAPIKey is returned by Create when no upstream credential
	// is configured to forward.
	ErrMissingAPIKey = errors.New("ANTHROPIC_API_KEY not set")
)
