package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(&buf, zerolog.InfoLevel, false)

	WithField("task_id", "abc").Info("task started")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}

	if entry["task_id"] != "abc" {
		t.Errorf("expected task_id field 'abc', got %v", entry["task_id"])
	}
	if entry["message"] != "task started" {
		t.Errorf("expected message 'task started', got %v", entry["message"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(&buf, zerolog.ErrorLevel, false)

	Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info message should be filtered at error level, got %q", buf.String())
	}

	Error("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("error message missing from output: %q", buf.String())
	}
}

func TestWithErrorAndFields(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(&buf, zerolog.InfoLevel, false)

	WithError(errors.New("boom")).WithFields(map[string]interface{}{
		"adapter": "browser",
		"attempt": 1,
	}).Error("invoke failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	if entry["error"] != "boom" {
		t.Errorf("expected error field 'boom', got %v", entry["error"])
	}
	if entry["adapter"] != "browser" {
		t.Errorf("expected adapter field, got %v", entry["adapter"])
	}
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(&buf, zerolog.InfoLevel, false)

	WithField("kind", "agent").Errorf("adapter not found: %s", "browser")

	if !strings.Contains(buf.String(), "adapter not found: browser") {
		t.Errorf("formatted message missing: %q", buf.String())
	}
}
