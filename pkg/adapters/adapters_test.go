package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/machovotrish/luma/pkg/agent"
)

func TestRegisteredTypes(t *testing.T) {
	for _, typ := range []string{"browser", "api", "echo"} {
		if !agent.IsRegistered(typ) {
			t.Errorf("adapter type %q not registered", typ)
		}
	}
}

func TestEchoAgentInvoke(t *testing.T) {
	var sink strings.Builder
	a, err := agent.Create(agent.Config{Type: "echo", Name: "Echo"}, &sink)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := a.Invoke(context.Background(), "open settings")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if result.Content != "echo: open settings" {
		t.Errorf("result = %q, want %q", result.Content, "echo: open settings")
	}

	output := sink.String()
	for _, want := range []string{"Iteration: 1", "Thought:", "Action: echo", "Final Answer:"} {
		if !strings.Contains(output, want) {
			t.Errorf("sink output missing %q:\n%s", want, output)
		}
	}
}

func TestEchoAgentHonorsCancellation(t *testing.T) {
	a := &EchoAgent{Base: agent.Base{Cfg: agent.Config{Type: "echo"}, Sink: &strings.Builder{}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Invoke(ctx, "anything"); err == nil {
		t.Error("Invoke() with canceled context expected error")
	}
}

func TestAPIAgentRequiresEndpoint(t *testing.T) {
	if _, err := agent.Create(agent.Config{Type: "api"}, &strings.Builder{}); err == nil {
		t.Error("Create() without endpoint expected error")
	}
}

func TestAPIAgentInvoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"type\":\"progress\",\"text\":\"Action: click\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"result\",\"text\":\"clicked the button\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	var sink strings.Builder
	a, err := agent.Create(agent.Config{Type: "api", Endpoint: server.URL}, &sink)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := a.Invoke(context.Background(), "click the button")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.Content != "clicked the button" {
		t.Errorf("result = %q, want %q", result.Content, "clicked the button")
	}
	if !strings.Contains(sink.String(), "Action: click") {
		t.Errorf("sink missing progress line, got %q", sink.String())
	}
}

func TestBrowserAgentUnavailableWithoutCLI(t *testing.T) {
	a, err := agent.Create(agent.Config{Type: "browser", Command: "definitely-not-a-real-binary-xyz"}, &strings.Builder{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if a.IsAvailable() {
		t.Error("IsAvailable() = true for missing CLI")
	}
	if _, err := a.Invoke(context.Background(), "task"); err == nil {
		t.Error("Invoke() with missing CLI expected error")
	}
}

func TestBrowserAgentStreamsAndCapturesFinalAnswer(t *testing.T) {
	var sink strings.Builder
	a, err := agent.Create(agent.Config{
		Type:    "browser",
		Command: "sh",
		Args:    []string{"-c", `cat >/dev/null; echo "Thought: working"; echo "Final Answer: all done"`},
	}, &sink)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := a.Invoke(context.Background(), "do something")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if result.Content != "all done" {
		t.Errorf("result = %q, want %q", result.Content, "all done")
	}
	if !strings.Contains(sink.String(), "Thought: working") {
		t.Errorf("sink missing progress line, got %q", sink.String())
	}
}

func writeFakeCLI(t *testing.T, script string) string {
	t.Helper()
	cli := filepath.Join(t.TempDir(), "windows-use")
	if err := os.WriteFile(cli, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return cli
}

func TestBrowserAgentHealthCheckReadsVersion(t *testing.T) {
	cli := writeFakeCLI(t, `if [ "$1" = "--version" ]; then echo "windows-use 1.2.3"; exit 0; fi`+"\nexit 1\n")

	a, err := agent.Create(agent.Config{Type: "browser", Command: cli}, &strings.Builder{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := a.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestBrowserAgentHealthCheckFailsWhenUnresponsive(t *testing.T) {
	cli := writeFakeCLI(t, "exit 1\n")

	a, err := agent.Create(agent.Config{Type: "browser", Command: cli}, &strings.Builder{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = a.HealthCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "--version or --help") {
		t.Errorf("HealthCheck() error = %v, want not-responding error", err)
	}
}

func TestBrowserAgentReportsExitCode(t *testing.T) {
	a, err := agent.Create(agent.Config{
		Type:    "browser",
		Command: "sh",
		Args:    []string{"-c", "cat >/dev/null; exit 3"},
	}, &strings.Builder{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = a.Invoke(context.Background(), "task")
	if err == nil || !strings.Contains(err.Error(), "exit code 3") {
		t.Errorf("Invoke() error = %v, want exit code 3", err)
	}
}
