// Package llm is the agent's boundary to the upstream language model: one
// request carrying the conversation so far, one text reply.
package llm

import (
	"context"
	"errors"
	"strings"

	"sorcerer/pkg/protocol"
)

// ErrUpstreamCallFailed wraps every failure of a model call.
var ErrUpstreamCallFailed = errors.New("upstream call failed")

// Request is one model call.
type Request struct {
	// System is an optional system prompt.
	System string
	// History is the agent chat log, oldest first, in its line format.
	History []string
	// Text is the new user message.
	Text string
}

// Client sends a Request and returns the model's text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Role is a chat message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat message sent upstream.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Messages converts a chat log plus the new text into model messages.
// Requester lines become user messages; any other "<name>: " line becomes
// an assistant message. Lines matching neither are skipped.
func Messages(history []string, text string) []Message {
	prefix := protocol.RequesterName + ": "
	msgs := make([]Message, 0, len(history)+1)
	for _, line := range history {
		if content, ok := strings.CutPrefix(line, prefix); ok {
			msgs = append(msgs, Message{Role: RoleUser, Content: content})
			continue
		}
		if _, content, ok := strings.Cut(line, ": "); ok {
			msgs = append(msgs, Message{Role: RoleAssistant, Content: content})
		}
	}
	return append(msgs, Message{Role: RoleUser, Content: text})
}
