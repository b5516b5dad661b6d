package protocol_test

import (
	"testing"
	"time"

	"sorcerer/pkg/protocol"
)

func TestAgentStateValid(t *testing.T) {
	tests := []struct {
		state protocol.AgentState
		want  bool
	}{
		{protocol.AgentIdle, true},
		{protocol.AgentBusy, true},
		{protocol.AgentError, true},
		{"casting", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusResponse_LastInvocationTime(t *testing.T) {
	t.Run("empty means never invoked", func(t *testing.T) {
		if _, ok := (protocol.StatusResponse{}).LastInvocationTime(); ok {
			t.Fatal("expected ok=false for empty timestamp")
		}
	})

	t.Run("parses RFC 3339", func(t *testing.T) {
		want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
		s := protocol.StatusResponse{LastInvocation: want.Format(time.RFC3339)}
		got, ok := s.LastInvocationTime()
		if !ok {
			t.Fatal("expected ok=true")
		}
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("malformed is not ok", func(t *testing.T) {
		s := protocol.StatusResponse{LastInvocation: "yesterday"}
		if _, ok := s.LastInvocationTime(); ok {
			t.Fatal("expected ok=false for malformed timestamp")
		}
	})
}

func TestChatLineFormat(t *testing.T) {
	if got := protocol.RequesterLine("hello"); got != "Sorcerer: hello" {
		t.Errorf("RequesterLine = %q", got)
	}
	if got := protocol.AgentLine("merlin", "hi there"); got != "merlin: hi there" {
		t.Errorf("AgentLine = %q", got)
	}
	if got := protocol.ContainerName("merlin"); got != "agent-merlin" {
		t.Errorf("ContainerName = %q", got)
	}
}
