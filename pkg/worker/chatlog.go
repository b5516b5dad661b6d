// Package worker implements the agent process: a conversational session
// behind the four agent RPCs, with a bounded chat log, a small lifecycle
// state machine and, in autonomous mode, command execution.
package worker

import (
	"sync"
)

// ChatLog is a bounded, ordered log of chat lines. Lines are appended one
// turn (two lines) at a time and evicted oldest-turn first, so a turn is
// never split.
type ChatLog struct {
	mu    sync.Mutex
	lines []string
	cap   int
}

// NewChatLog creates a log holding at most capacity lines. An odd capacity
// is rounded down so that it holds whole turns.
func NewChatLog(capacity int) *ChatLog {
	capacity -= capacity % 2
	if capacity < 2 {
		capacity = 2
	}
	return &ChatLog{
		lines: make([]string, 0, capacity),
		cap:   capacity,
	}
}

// AppendTurn adds a request line and its response line, evicting whole
// turns from the front while the log is over capacity.
func (l *ChatLog) AppendTurn(request, response string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = append(l.lines, request, response)
	if over := len(l.lines) - l.cap; over > 0 {
		over += over % 2
		n := copy(l.lines, l.lines[over:])
		clear(l.lines[n:])
		l.lines = l.lines[:n]
	}
}

// Last returns a copy of the last n lines, or the whole log when n is zero
// or exceeds its length.
func (l *ChatLog) Last(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if n > 0 && n < len(l.lines) {
		start = len(l.lines) - n
	}
	out := make([]string, len(l.lines)-start)
	copy(out, l.lines[start:])
	return out
}

// Len returns the number of lines.
func (l *ChatLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}
