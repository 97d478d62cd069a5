// Package config provides configuration management for Luma.
// It defines the structure for the YAML configuration file and handles
// loading, validation, and default value application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/machovotrish/luma/pkg/agent"
)

// Config is the top-level configuration structure for Luma.
// It defines the agent adapter, task runner behavior, storage, logging,
// and the optional metrics endpoint.
type Config struct {
	// Version is the configuration file format version
	Version string `yaml:"version"`
	// Agent is the adapter configuration for the automation agent
	Agent agent.Config `yaml:"agent"`
	// Runner defines task dispatch behavior
	Runner RunnerConfig `yaml:"runner"`
	// Storage defines where session state is persisted
	Storage StorageConfig `yaml:"storage"`
	// Logging defines operator log behavior
	Logging LoggingConfig `yaml:"logging"`
	// Metrics defines the optional Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics"`
}

// RunnerConfig defines how tasks are dispatched to the agent.
type RunnerConfig struct {
	// TaskTimeout is the maximum time a single task may run (0 = unlimited)
	TaskTimeout time.Duration `yaml:"task_timeout"`
	// RateLimit is the maximum task starts per second (0 = unlimited)
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the number of starts allowed to burst past the rate
	RateBurst int `yaml:"rate_burst"`
}

// StorageConfig defines where settings, histories, and credentials live.
type StorageConfig struct {
	// DataDir is the directory holding the session state files
	DataDir string `yaml:"data_dir"`
	// ReplayMessages is how many chat messages to restore at startup
	ReplayMessages int `yaml:"replay_messages"`
	// SidebarTasks is how many recent tasks the sidebar shows
	SidebarTasks int `yaml:"sidebar_tasks"`
}

// LoggingConfig defines operator log behavior. The operator log is
// separate from the chat transcript and never rendered in the UI.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error"
	Level string `yaml:"level"`
	// File is the log file path; empty discards operator logs
	File string `yaml:"file"`
	// Pretty enables human-readable console formatting instead of JSON
	Pretty bool `yaml:"pretty"`
}

// MetricsConfig defines the optional Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled determines if the metrics HTTP server runs (disabled by default)
	Enabled bool `yaml:"enabled"`
	// Addr is the listen address for the metrics server (default: ":9464")
	Addr string `yaml:"addr"`
}

// NewDefaultConfig creates a configuration with sensible defaults.
// The default data directory is ~/.luma.
func NewDefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Version: "1.0",
		Agent: agent.Config{
			Type: "browser",
			Name: "Luma",
		},
		Runner: RunnerConfig{
			TaskTimeout: 0,
			RateLimit:   0,
			RateBurst:   1,
		},
		Storage: StorageConfig{
			DataDir:        filepath.Join(homeDir, ".luma"),
			ReplayMessages: 20,
			SidebarTasks:   8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   filepath.Join(homeDir, ".luma", "luma.log"),
			Pretty: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9464",
		},
	}
}

// LoadConfig loads and validates a configuration from a YAML file.
// It applies default values for any missing optional fields.
// Returns an error if the file cannot be read, parsed, or is invalid.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

// SaveConfig writes the configuration to a YAML file.
// The file is created with 0600 permissions (read/write for owner only).
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validTypes := map[string]bool{
		"":        true,
		"browser": true,
		"api":     true,
		"echo":    true,
	}
	if !validTypes[c.Agent.Type] {
		return fmt.Errorf("unknown agent type: %s", c.Agent.Type)
	}

	if c.Agent.Type == "api" && c.Agent.Endpoint == "" {
		return fmt.Errorf("endpoint is required for the api agent type")
	}

	if c.Runner.RateLimit < 0 {
		return fmt.Errorf("runner.rate_limit cannot be negative")
	}

	if c.Runner.TaskTimeout < 0 {
		return fmt.Errorf("runner.task_timeout cannot be negative")
	}

	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}

	return nil
}

func (c *Config) applyDefaults() {
	defaults := NewDefaultConfig()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Agent.Type == "" {
		c.Agent.Type = defaults.Agent.Type
	}

	if c.Agent.Name == "" {
		c.Agent.Name = defaults.Agent.Name
	}

	if c.Runner.RateBurst == 0 {
		c.Runner.RateBurst = defaults.Runner.RateBurst
	}

	if c.Storage.DataDir == "" {
		c.Storage.DataDir = defaults.Storage.DataDir
	}

	if c.Storage.ReplayMessages == 0 {
		c.Storage.ReplayMessages = defaults.Storage.ReplayMessages
	}

	if c.Storage.SidebarTasks == 0 {
		c.Storage.SidebarTasks = defaults.Storage.SidebarTasks
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	if c.Metrics.Addr == "" {
		c.Metrics.Addr = defaults.Metrics.Addr
	}
}
