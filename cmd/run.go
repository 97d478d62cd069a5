package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/machovotrish/luma/pkg/agent"
	"github.com/machovotrish/luma/pkg/config"
	"github.com/machovotrish/luma/pkg/events"
	"github.com/machovotrish/luma/pkg/log"
	"github.com/machovotrish/luma/pkg/metrics"
	"github.com/machovotrish/luma/pkg/middleware"
	"github.com/machovotrish/luma/pkg/ratelimit"
	"github.com/machovotrish/luma/pkg/runner"
	"github.com/machovotrish/luma/pkg/sink"
	"github.com/machovotrish/luma/pkg/store"
	"github.com/machovotrish/luma/pkg/tui"

	// Adapters register themselves with the agent registry.
	_ "github.com/machovotrish/luma/pkg/adapters"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the chat interface",
	Long: `Run opens the chat interface connected to the configured automation
agent. If the agent is unavailable the interface still opens in degraded
mode so history and settings remain accessible.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}

	logFile, err := reinitLoggerForTUI(cfg)
	if err != nil {
		// The UI still works without an operator log file.
		fmt.Printf("Warning: %v\n", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	pipeline, err := buildPipeline(cfg, st, nil)
	if err != nil {
		return err
	}
	defer pipeline.shutdown()

	return tui.Run(tui.Options{
		Config:         cfg,
		Store:          st,
		Runner:         pipeline.runner,
		Queue:          pipeline.queue,
		AgentName:      pipeline.agent.Name(),
		Degraded:       pipeline.degraded,
		DegradedReason: pipeline.degradedReason,
	})
}

// pipeline holds the wired task execution components.
type pipeline struct {
	agent          agent.Agent
	queue          *events.Queue
	runner         *runner.Runner
	watcher        *store.SettingsWatcher
	metricsServer  *metrics.Server
	degraded       bool
	degradedReason string
}

// buildPipeline assembles queue, sink, adapter, middleware, and runner from
// the configuration. onAccepted, when non-nil, fires once per accepted start.
func buildPipeline(cfg *config.Config, st *store.Store, onAccepted func(runner.Task)) (*pipeline, error) {
	p := &pipeline{
		queue: events.NewQueue(events.DefaultCapacity),
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		p.metricsServer = metrics.NewServer(metrics.ServerConfig{Addr: cfg.Metrics.Addr})
		m = p.metricsServer.GetMetrics()
		go func() {
			if err := p.metricsServer.Start(); err != nil {
				log.WithError(err).Error("metrics server exited")
			}
		}()
	}

	agentName := cfg.Agent.Name
	classifier := sink.NewClassifier(func(line sink.Classified) {
		if m != nil {
			m.RecordSinkLine(string(line.Category))
		}
		kind := agent.KindAgent
		if line.Category == sink.CategoryError {
			kind = agent.KindError
		}
		if !p.queue.Push(events.Chat(agentName, line.Text, kind)) && m != nil {
			m.RecordEventDropped()
		}
	})

	agentCfg := cfg.Agent
	if agentCfg.APIKey == "" {
		agentCfg.APIKey = st.LoadCredential()
	}

	a, err := agent.Create(agentCfg, classifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	p.agent = a

	if !a.IsAvailable() {
		p.degraded = true
		p.degradedReason = fmt.Sprintf("agent %q (type %s) is not available", a.Name(), a.Type())
		log.WithFields(map[string]interface{}{
			"agent_name": a.Name(),
			"agent_type": a.Type(),
		}).Warn("starting in degraded mode")
	}

	watcher, err := store.NewSettingsWatcher(st)
	if err != nil {
		// Fall back to reading settings from disk on each dispatch.
		log.WithError(err).Warn("settings hot-reload disabled")
	} else {
		p.watcher = watcher
		go watcher.Start()
	}

	rules := func() []string {
		if p.watcher != nil {
			return p.watcher.Settings().MeaningfulRules()
		}
		return st.LoadSettings().MeaningfulRules()
	}

	chain := middleware.NewChain(
		middleware.NewCommandValidation(tui.InputPlaceholder),
		middleware.NewRuleInjection(rules),
	)

	p.runner = runner.New(runner.Options{
		Agent:             a,
		Chain:             chain,
		Queue:             p.queue,
		Sink:              classifier,
		Limiter:           ratelimit.NewLimiter(cfg.Runner.RateLimit, cfg.Runner.RateBurst),
		Metrics:           m,
		TaskTimeout:       cfg.Runner.TaskTimeout,
		Credential:        st.LoadCredential,
		RequireCredential: a.Type() == "api",
		Degraded:          p.degraded,
		OnAccepted:        onAccepted,
	})

	return p, nil
}

func (p *pipeline) shutdown() {
	if p.watcher != nil {
		p.watcher.Stop()
	}
	if p.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := p.metricsServer.Stop(ctx); err != nil {
			log.WithError(err).Error("failed to stop metrics server")
		}
	}
	p.runner.Wait()
}
