package agent

import (
	"context"
	"io"
	"testing"
)

type stubAgent struct {
	Base
}

func (s *stubAgent) Invoke(ctx context.Context, query string) (Result, error) {
	return Result{Content: "ok"}, nil
}

func (s *stubAgent) IsAvailable() bool { return true }

func (s *stubAgent) HealthCheck(ctx context.Context) error { return nil }

func TestRegisterAndCreate(t *testing.T) {
	Register("stub", func(cfg Config, sink io.Writer) (Agent, error) {
		return &stubAgent{Base: Base{Cfg: cfg, Sink: sink}}, nil
	})

	a, err := Create(Config{Type: "stub", Name: "Stubby"}, io.Discard)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if a.Name() != "Stubby" {
		t.Errorf("expected name 'Stubby', got %s", a.Name())
	}
	if a.Type() != "stub" {
		t.Errorf("expected type 'stub', got %s", a.Type())
	}
}

func TestCreateUnknownType(t *testing.T) {
	_, err := Create(Config{Type: "does-not-exist"}, io.Discard)
	if err == nil {
		t.Fatal("expected error for unknown adapter type")
	}
}

func TestBaseNameFallsBackToType(t *testing.T) {
	b := &Base{Cfg: Config{Type: "browser"}}
	if b.Name() != "browser" {
		t.Errorf("expected fallback name 'browser', got %s", b.Name())
	}
}

func TestNewChatMessage(t *testing.T) {
	msg := NewChatMessage("User", "open the browser", KindUser)

	if msg.Sender != "User" || msg.Body != "open the browser" || msg.Kind != KindUser {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.Timestamp == "" {
		t.Error("expected timestamp to be set")
	}
}
