package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewServerDefaults(t *testing.T) {
	s := NewServer(ServerConfig{})
	if s.httpSrv.Addr != ":9464" {
		t.Errorf("default addr = %q, want :9464", s.httpSrv.Addr)
	}
	if s.GetMetrics() == nil {
		t.Fatal("GetMetrics() = nil")
	}
}

func TestServerServesHealthAndMetrics(t *testing.T) {
	s := NewServer(ServerConfig{Addr: ":0"})
	s.GetMetrics().RecordTaskStart()
	s.GetMetrics().RecordTaskEnd("completed", 2*time.Second)

	ts := httptest.NewServer(s.httpSrv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "healthy") {
		t.Errorf("/health = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()

	scrape := string(body)
	if !strings.Contains(scrape, "luma_task_running") {
		t.Errorf("scrape missing run-slot gauge:\n%s", scrape)
	}
	if !strings.Contains(scrape, `luma_tasks_total{outcome="completed"} 1`) {
		t.Errorf("scrape missing completed counter:\n%s", scrape)
	}
}
