package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"sorcerer/pkg/protocol"
)

// Agent defaults.
const (
	DefaultAgentName = "unnamed"
	DefaultModel     = "claude-3-5-sonnet-20241022"
)

// Agent is the launch configuration of an agent process.
type Agent struct {
	Name             string
	Port             int
	APIKey           string
	Model            string
	Autonomous       bool
	SystemPromptFile string
	MemoryDB         string
	LogLevel         string
	Workdir          string
}

// AgentFromEnv reads the agent launch environment.
func AgentFromEnv() (Agent, error) {
	return AgentFrom(os.Getenv)
}

// AgentFrom is AgentFromEnv with an injectable lookup. An API key file,
// when set, takes precedence over the inline key.
func AgentFrom(getenv func(string) string) (Agent, error) {
	a := Agent{
		Name:             orDefault(getenv(protocol.EnvAgentName), DefaultAgentName),
		Port:             protocol.DefaultPort,
		Model:            orDefault(getenv(protocol.EnvModel), DefaultModel),
		Autonomous:       ParseBool(getenv(protocol.EnvAutonomous)),
		SystemPromptFile: getenv(protocol.EnvSystemPromptFile),
		MemoryDB:         getenv(protocol.EnvMemoryDB),
		LogLevel:         orDefault(getenv(protocol.EnvLogLevel), "info"),
		Workdir:          getenv(protocol.EnvWorkdir),
	}

	if v := getenv(protocol.EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return a, fmt.Errorf("%s=%q: invalid port", protocol.EnvPort, v)
		}
		a.Port = port
	}

	key, err := LoadAPIKey(getenv)
	if err != nil {
		return a, err
	}
	a.APIKey = key
	return a, nil
}

// LoadAPIKey returns the key from ANTHROPIC_API_KEY_FILE if set, else
// ANTHROPIC_API_KEY. An empty result is not an error; invocations fail
// later with an upstream error instead.
func LoadAPIKey(getenv func(string) string) (string, error) {
	if path := getenv(protocol.EnvAPIKeyFile); path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied secret path
		if err != nil {
			return "", fmt.Errorf("read %s: %w", protocol.EnvAPIKeyFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(getenv(protocol.EnvAPIKey)), nil
}

// PortFromEnv extracts the RPC port from a container's declared
// environment, falling back to the default when absent or malformed.
func PortFromEnv(env map[string]string) int {
	if v, ok := env[protocol.EnvPort]; ok {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			return port
		}
	}
	return protocol.DefaultPort
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
