// Package config resolves orchestrator settings (defaults, then an optional
// YAML file, then environment) and the agent's launch environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Orchestrator defaults.
const (
	DefaultImage        = "sorcerer-agent:latest"
	DefaultStartingPort = 50100
	DefaultReadyDelay   = 2 * time.Second
	DefaultDirName      = ".sorcerer"
	ConfigFileName      = "config.yaml"
)

// Orchestrator environment overrides.
const (
	EnvHome             = "SORCERER_HOME"
	EnvImage            = "SORCERER_IMAGE"
	EnvStartingPort     = "SORCERER_STARTING_PORT"
	EnvContainerTimeout = "SORCERER_CONTAINER_TIMEOUT"
	EnvAutonomous       = "SORCERER_AUTONOMOUS"
	EnvAPIKey           = "ANTHROPIC_API_KEY"
)

// Config holds orchestrator settings.
type Config struct {
	// Image is the agent container image.
	Image string `yaml:"image"`
	// StartingPort seeds the port allocator.
	StartingPort int `yaml:"starting_port"`
	// ReadyDelay is the fixed wait between starting a container and
	// dialing its RPC server.
	ReadyDelay time.Duration `yaml:"-"`
	// ReadyDelaySeconds mirrors ReadyDelay in the config file.
	ReadyDelaySeconds int `yaml:"container_timeout"`
	// Autonomous launches new agents in command-execution mode.
	Autonomous bool `yaml:"autonomous"`
	// APIKey is forwarded to agents. It is only read from the environment.
	APIKey string `yaml:"-"`
	// Env holds extra variables passed to every new agent.
	Env map[string]string `yaml:"env"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Image:        DefaultImage,
		StartingPort: DefaultStartingPort,
		ReadyDelay:   DefaultReadyDelay,
	}
}

// Home returns SORCERER_HOME or ~/.sorcerer.
func Home(getenv func(string) string) (string, error) {
	if v := getenv(EnvHome); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Load resolves the orchestrator configuration from the process
// environment and $SORCERER_HOME/config.yaml.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with an injectable environment lookup.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()

	home, err := Home(getenv)
	if err != nil {
		return cfg, err
	}
	if err := cfg.mergeFile(filepath.Join(home, ConfigFileName)); err != nil {
		return cfg, err
	}
	if err := cfg.mergeEnv(getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// mergeFile overlays non-zero values from a YAML file. A missing file is
// not an error.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from SORCERER_HOME
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if file.Image != "" {
		c.Image = file.Image
	}
	if file.StartingPort != 0 {
		c.StartingPort = file.StartingPort
	}
	if file.ReadyDelaySeconds != 0 {
		c.ReadyDelay = time.Duration(file.ReadyDelaySeconds) * time.Second
	}
	if file.Autonomous {
		c.Autonomous = true
	}
	if len(file.Env) > 0 {
		c.Env = file.Env
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) error {
	if v := getenv(EnvImage); v != "" {
		c.Image = v
	}
	if v := getenv(EnvStartingPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvStartingPort, v, err)
		}
		c.StartingPort = port
	}
	if v := getenv(EnvContainerTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvContainerTimeout, v, err)
		}
		c.ReadyDelay = time.Duration(secs) * time.Second
	}
	if v := getenv(EnvAutonomous); v != "" {
		c.Autonomous = ParseBool(v)
	}
	c.APIKey = getenv(EnvAPIKey)
	return nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.StartingPort < 1 || c.StartingPort > 65535 {
		return fmt.Errorf("starting port %d out of range", c.StartingPort)
	}
	if c.ReadyDelay < 0 {
		return fmt.Errorf("container timeout %s is negative", c.ReadyDelay)
	}
	if c.Image == "" {
		return errors.New("image must not be empty")
	}
	return nil
}

// ParseBool accepts 1/true/yes/on, case-insensitively.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
