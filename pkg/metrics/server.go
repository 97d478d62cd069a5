package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/machovotrish/luma/pkg/log"
)

// Server exposes the task pipeline collectors for Prometheus scrapes. It is
// opt-in; the pipeline only runs one when metrics are enabled in the config.
type Server struct {
	metrics *Metrics
	httpSrv *http.Server
}

// ServerConfig configures the scrape endpoint.
type ServerConfig struct {
	// Addr is the listen address, ":9464" when empty
	Addr string
}

// NewServer builds the server and its collector set on a private registry.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":9464"
	}

	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"healthy","service":"luma"}`)
	})

	return &Server{
		metrics: m,
		httpSrv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Start serves scrapes until Stop is called. It blocks.
func (s *Server) Start() error {
	log.WithField("addr", s.httpSrv.Addr).Info("metrics endpoint listening")

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics endpoint: %w", err)
	}
	return nil
}

// Stop drains in-flight scrapes and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics endpoint shutdown: %w", err)
	}

	log.Info("metrics endpoint stopped")
	return nil
}

// GetMetrics returns the collector set backed by this server's registry.
func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}
