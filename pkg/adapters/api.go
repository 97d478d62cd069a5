package adapters

import (
	"context"
	"fmt"
	"io"

	"github.com/machovotrish/luma/pkg/agent"
	"github.com/machovotrish/luma/pkg/client"
	"github.com/machovotrish/luma/pkg/log"
)

// APIAgent dispatches tasks to a hosted automation agent over HTTP.
// Progress events stream straight into the sink.
type APIAgent struct {
	agent.Base
	client *client.AgentClient
}

// NewAPIAgent constructs the HTTP adapter. The endpoint is required; the
// API key may be empty for unauthenticated endpoints.
func NewAPIAgent(cfg agent.Config, sink io.Writer) (agent.Agent, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for the api adapter")
	}

	a := &APIAgent{
		Base:   agent.Base{Cfg: cfg, Sink: sink},
		client: client.NewAgentClient(cfg.Endpoint, cfg.APIKey),
	}

	log.WithFields(map[string]interface{}{
		"agent_name": a.Name(),
		"endpoint":   cfg.Endpoint,
	}).Info("api agent initialized")

	return a, nil
}

// IsAvailable reports whether the adapter is configured well enough to try.
// Reachability is only known once a request is made.
func (a *APIAgent) IsAvailable() bool {
	return a.Cfg.Endpoint != ""
}

// HealthCheck pings the agent endpoint.
func (a *APIAgent) HealthCheck(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		log.WithField("agent_name", a.Name()).WithError(err).Error("api agent health check failed")
		return fmt.Errorf("agent endpoint unreachable: %w", err)
	}
	log.WithField("agent_name", a.Name()).Debug("api agent health check passed")
	return nil
}

// Invoke runs one task to completion on the hosted agent.
func (a *APIAgent) Invoke(ctx context.Context, query string) (agent.Result, error) {
	result, err := a.client.RunTask(ctx, client.TaskRequest{
		Task:  query,
		Model: a.Cfg.Model,
	}, a.Sink)
	if err != nil {
		return agent.Result{}, err
	}
	return agent.Result{Content: result}, nil
}

func init() {
	agent.Register("api", NewAPIAgent)
}
