package protocol

import "time"

// Naming and addressing conventions shared by the orchestrator and agents.
const (
	// ContainerPrefix is prepended to an agent name to form its container name.
	ContainerPrefix = "agent-"

	// DefaultPort is the RPC port assumed when a container declares none.
	DefaultPort = 50051

	// AgentHost is the address agents are dialed on. Agents run with host
	// networking, so every agent is reachable on loopback.
	AgentHost = "127.0.0.1"

	// RequesterName prefixes the requester's lines in the chat log.
	RequesterName = "Sorcerer"

	// TerminateReason is sent by the orchestrator when removing an agent.
	TerminateReason = "Sorcerer's command"

	// TerminateGrace is how long an agent waits after acknowledging a
	// Terminate before exiting, so the response can flush.
	TerminateGrace = 100 * time.Millisecond

	// MaxHistoryEntries caps the agent chat log (50 turns of two lines).
	MaxHistoryEntries = 100
)

// Launch-time environment variables read by the agent process.
const (
	EnvAgentName        = "AGENT_NAME"
	EnvPort             = "GRPC_PORT"
	EnvAPIKey           = "ANTHROPIC_API_KEY"
	EnvAPIKeyFile       = "ANTHROPIC_API_KEY_FILE"
	EnvModel            = "ANTHROPIC_MODEL"
	EnvAutonomous       = "AGENT_AUTONOMOUS"
	EnvSystemPromptFile = "AGENT_SYSTEM_PROMPT_FILE"
	EnvMemoryDB         = "AGENT_MEMORY_DB"
	EnvLogLevel         = "AGENT_LOG_LEVEL"
	EnvWorkdir          = "AGENT_WORKDIR"
)

// ContainerName returns the container name for an agent.
func ContainerName(agent string) string {
	return ContainerPrefix + agent
}

// RequesterLine formats a requester chat-log entry.
func RequesterLine(text string) string {
	return RequesterName + ": " + text
}

// AgentLine formats an agent chat-log entry.
func AgentLine(agent, text string) string {
	return agent + ": " + text
}
