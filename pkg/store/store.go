// Package store persists Luma's state between sessions: user settings, the
// chat transcript, the task history, and the API credential. Each concern
// is its own JSON document in the data directory and every save rewrites
// the whole file; there is no locking, versioning, or incremental diffing.
//
// A failed save is logged to the operator log and otherwise silently lost.
// This matches the tool's blast radius: the worst case is a missing line of
// local history, never corrupted remote state.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/machovotrish/luma/pkg/agent"
	"github.com/machovotrish/luma/pkg/log"
)

const (
	settingsFile    = "settings.json"
	chatHistoryFile = "chat_history.json"
	taskHistoryFile = "task_history.json"

	// MaxRules caps how many meaningful rules the settings form accepts.
	MaxRules = 5
)

// Settings holds user-tunable behavior, mutated only through the settings
// form and persisted wholesale on every save and at shutdown.
type Settings struct {
	// Rules are injected as a numbered instruction block before each task
	Rules []string `json:"rules"`
	// Theme names the TUI color theme
	Theme string `json:"theme"`
}

// DefaultSettings returns the settings used before any save exists.
func DefaultSettings() Settings {
	return Settings{
		Rules: []string{
			"Be helpful and accurate",
			"Provide clear explanations",
			"Ask for clarification when needed",
		},
		Theme: "dark",
	}
}

// MeaningfulRules returns the non-blank rules, order preserved, capped at
// MaxRules.
func (s Settings) MeaningfulRules() []string {
	out := make([]string, 0, MaxRules)
	for _, rule := range s.Rules {
		if trimmed := strings.TrimSpace(rule); trimmed != "" {
			out = append(out, trimmed)
			if len(out) == MaxRules {
				break
			}
		}
	}
	return out
}

// Store reads and writes the JSON documents in a single data directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

// SettingsPath returns the absolute path of the settings document.
func (s *Store) SettingsPath() string {
	return filepath.Join(s.dir, settingsFile)
}

// LoadSettings reads settings from disk, falling back to defaults when the
// file is missing or unreadable.
func (s *Store) LoadSettings() Settings {
	var settings Settings
	if err := s.readJSON(settingsFile, &settings); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("file", settingsFile).Error("failed to load settings")
		}
		return DefaultSettings()
	}
	return settings
}

// SaveSettings rewrites the settings document.
func (s *Store) SaveSettings(settings Settings) error {
	return s.writeJSON(settingsFile, settings)
}

// LoadChatHistory reads the full chat transcript. A missing file yields an
// empty history.
func (s *Store) LoadChatHistory() []agent.ChatMessage {
	var history []agent.ChatMessage
	if err := s.readJSON(chatHistoryFile, &history); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("file", chatHistoryFile).Error("failed to load chat history")
		}
		return nil
	}
	return history
}

// SaveChatHistory rewrites the full chat transcript.
func (s *Store) SaveChatHistory(history []agent.ChatMessage) error {
	return s.writeJSON(chatHistoryFile, history)
}

// LoadTaskHistory reads the full task history, oldest first.
func (s *Store) LoadTaskHistory() []string {
	var history []string
	if err := s.readJSON(taskHistoryFile, &history); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("file", taskHistoryFile).Error("failed to load task history")
		}
		return nil
	}
	return history
}

// SaveTaskHistory rewrites the full task history.
func (s *Store) SaveTaskHistory(history []string) error {
	return s.writeJSON(taskHistoryFile, history)
}

// RecentTasks returns up to n tasks, most recent first, for the sidebar.
func RecentTasks(history []string, n int) []string {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) < n {
		n = len(history)
	}

	out := make([]string, 0, n)
	for i := len(history) - 1; i >= len(history)-n; i-- {
		out = append(out, history[i])
	}
	return out
}

// LastMessages returns up to n of the most recent chat messages in their
// original order, for replay into the viewport at startup.
func LastMessages(history []agent.ChatMessage, n int) []agent.ChatMessage {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func (s *Store) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		log.WithError(err).WithField("path", path).Error("failed to write state file")
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	log.WithFields(map[string]interface{}{
		"path":      path,
		"file_size": len(data),
	}).Debug("state file saved")

	return nil
}
