package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "luma.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigValid(t *testing.T) {
	path := writeConfigFile(t, `
version: "1.0"
agent:
  type: browser
  name: Luma
  command: windows-use
runner:
  task_timeout: 5m
  rate_limit: 2
  rate_burst: 3
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Agent.Type != "browser" {
		t.Errorf("Agent.Type = %q, want browser", cfg.Agent.Type)
	}
	if cfg.Agent.Command != "windows-use" {
		t.Errorf("Agent.Command = %q, want windows-use", cfg.Agent.Command)
	}
	if cfg.Runner.TaskTimeout != 5*time.Minute {
		t.Errorf("Runner.TaskTimeout = %v, want 5m", cfg.Runner.TaskTimeout)
	}
	if cfg.Runner.RateLimit != 2 {
		t.Errorf("Runner.RateLimit = %v, want 2", cfg.Runner.RateLimit)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
agent:
  type: echo
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", cfg.Version)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir should default to a non-empty path")
	}
	if cfg.Storage.ReplayMessages != 20 {
		t.Errorf("Storage.ReplayMessages = %d, want 20", cfg.Storage.ReplayMessages)
	}
	if cfg.Storage.SidebarTasks != 8 {
		t.Errorf("Storage.SidebarTasks = %d, want 8", cfg.Storage.SidebarTasks)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Metrics.Addr != ":9464" {
		t.Errorf("Metrics.Addr = %q, want :9464", cfg.Metrics.Addr)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown agent type",
			content: `
agent:
  type: teleport
`,
		},
		{
			name: "api without endpoint",
			content: `
agent:
  type: api
`,
		},
		{
			name: "negative rate limit",
			content: `
agent:
  type: echo
runner:
  rate_limit: -1
`,
		},
		{
			name: "bad log level",
			content: `
agent:
  type: echo
logging:
  level: loud
`,
		},
		{
			name:    "malformed yaml",
			content: "agent: [not: closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig() expected error, got nil")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() on missing file expected error, got nil")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Agent.Type = "echo"
	cfg.Runner.RateLimit = 1.5

	path := filepath.Join(t.TempDir(), "luma.yaml")
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Agent.Type != "echo" {
		t.Errorf("Agent.Type = %q, want echo", loaded.Agent.Type)
	}
	if loaded.Runner.RateLimit != 1.5 {
		t.Errorf("Runner.RateLimit = %v, want 1.5", loaded.Runner.RateLimit)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
}
