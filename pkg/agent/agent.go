// Package agent defines the boundary to the external automation agent.
// The agent itself is an opaque collaborator: one synchronous Invoke call
// that may take seconds to minutes, streams free-form progress text to a
// log sink while it runs, and cannot be interrupted mid-call.
package agent

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Kind classifies a chat message for display and persistence.
type Kind string

const (
	// KindUser marks a message typed by the user
	KindUser Kind = "user"
	// KindAgent marks progress or result output from the agent
	KindAgent Kind = "agent"
	// KindSystem marks application notices (saves, cancellations, startup)
	KindSystem Kind = "system"
	// KindError marks failures surfaced to the chat window
	KindError Kind = "error"
)

// ChatMessage is a single line in the chat transcript.
// The sequence is append-only and persisted wholesale after every append.
type ChatMessage struct {
	// Timestamp is the wall-clock time the message was added, HH:MM:SS
	Timestamp string `json:"timestamp"`
	// Sender is the display name ("User", "Agent", "System")
	Sender string `json:"sender"`
	// Body is the message text
	Body string `json:"body"`
	// Kind classifies the message: user, agent, system, or error
	Kind Kind `json:"kind"`
}

// NewChatMessage builds a chat message stamped with the current time.
func NewChatMessage(sender, body string, kind Kind) ChatMessage {
	return ChatMessage{
		Timestamp: time.Now().Format("15:04:05"),
		Sender:    sender,
		Body:      body,
		Kind:      kind,
	}
}

// Result is the final answer returned by a completed invocation.
type Result struct {
	// Content is the agent's final answer text; may be empty
	Content string
}

// Config defines how an adapter instance is constructed.
type Config struct {
	// Type selects the adapter implementation (e.g. "browser", "api", "echo")
	Type string `yaml:"type"`
	// Name is the display name used in chat lines and logs
	Name string `yaml:"name"`
	// Command is the external CLI executable for exec-based adapters
	Command string `yaml:"command"`
	// Args are extra arguments placed before the query for exec-based adapters
	Args []string `yaml:"args"`
	// Endpoint is the base URL for the api adapter
	Endpoint string `yaml:"endpoint"`
	// APIKey authenticates api-adapter requests; loaded from the credential
	// store when empty
	APIKey string `yaml:"api_key"`
	// Model is the model identifier passed through to the agent
	Model string `yaml:"model"`
}

// Agent is the invocation boundary to the external automation agent.
//
// Invoke blocks until the agent finishes. Cancellation of the passed context
// is cooperative only: it is observed at checkpoints around the call, not
// inside it, so an in-flight invocation keeps running until it returns on
// its own.
type Agent interface {
	// Name returns the display name of the agent
	Name() string
	// Type returns the adapter type
	Type() string
	// Invoke runs one command to completion, writing progress to the sink
	// the adapter was constructed with
	Invoke(ctx context.Context, query string) (Result, error)
	// IsAvailable reports whether the external tool or endpoint is reachable
	// enough to accept tasks
	IsAvailable() bool
	// HealthCheck verifies the agent can actually be driven
	HealthCheck(ctx context.Context) error
}

// Base provides the common fields and metadata methods shared by adapters.
// Implementations embed Base and supply Invoke, IsAvailable, and HealthCheck.
type Base struct {
	// Cfg is the full adapter configuration
	Cfg Config
	// Sink receives the agent's progress output during Invoke
	Sink io.Writer
}

// Name returns the configured display name, falling back to the type.
func (b *Base) Name() string {
	if b.Cfg.Name != "" {
		return b.Cfg.Name
	}
	return b.Cfg.Type
}

// Type returns the adapter type.
func (b *Base) Type() string {
	return b.Cfg.Type
}

// Constructor builds an adapter from its configuration and a progress sink.
type Constructor func(cfg Config, sink io.Writer) (Agent, error)

var registry = make(map[string]Constructor)

// Register makes an adapter type available to Create.
// Adapters call Register from init().
func Register(adapterType string, ctor Constructor) {
	registry[adapterType] = ctor
}

// Create builds the adapter named by cfg.Type.
func Create(cfg Config, sink io.Writer) (Agent, error) {
	ctor, ok := registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown adapter type: %s", cfg.Type)
	}
	return ctor(cfg, sink)
}

// IsRegistered reports whether an adapter type is available to Create.
func IsRegistered(adapterType string) bool {
	_, ok := registry[adapterType]
	return ok
}

// Types returns the registered adapter type names.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	return types
}
