package adapters

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/machovotrish/luma/pkg/agent"
)

// EchoAgent is an in-process adapter that simulates a short agent run.
// It needs no external tools, which makes it the fallback for degraded
// mode and the fixture for exercising the full pipeline in tests.
type EchoAgent struct {
	agent.Base
	// Delay is the pause between emitted progress lines
	Delay time.Duration
}

// NewEchoAgent constructs the echo adapter.
func NewEchoAgent(cfg agent.Config, sink io.Writer) (agent.Agent, error) {
	return &EchoAgent{Base: agent.Base{Cfg: cfg, Sink: sink}}, nil
}

// IsAvailable always reports true.
func (e *EchoAgent) IsAvailable() bool {
	return true
}

// HealthCheck always passes.
func (e *EchoAgent) HealthCheck(_ context.Context) error {
	return nil
}

// Invoke emits a fixed progress sequence to the sink and echoes the query
// back as the result. The context is honored between lines.
func (e *EchoAgent) Invoke(ctx context.Context, query string) (agent.Result, error) {
	lines := []string{
		"Iteration: 1",
		fmt.Sprintf("Thought: received request %q", query),
		"Action: echo",
		"Observation: nothing to automate",
		fmt.Sprintf("Final Answer: echo: %s", query),
	}

	for _, line := range lines {
		select {
		case <-ctx.Done():
			return agent.Result{}, ctx.Err()
		default:
		}

		fmt.Fprintln(e.Sink, line)
		if e.Delay > 0 {
			select {
			case <-ctx.Done():
				return agent.Result{}, ctx.Err()
			case <-time.After(e.Delay):
			}
		}
	}

	return agent.Result{Content: "echo: " + query}, nil
}

func init() {
	agent.Register("echo", NewEchoAgent)
}
