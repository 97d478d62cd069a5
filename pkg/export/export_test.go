package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/machovotrish/luma/pkg/agent"
)

func sampleTranscript() []agent.ChatMessage {
	return []agent.ChatMessage{
		{Timestamp: "10:00:01", Sender: "You", Body: "open youtube", Kind: agent.KindUser},
		{Timestamp: "10:00:05", Sender: "Luma", Body: "💭 Thought: opening the browser", Kind: agent.KindAgent},
		{Timestamp: "10:00:20", Sender: "System", Body: "Task completed", Kind: agent.KindSystem},
	}
}

func TestExportJSON(t *testing.T) {
	e := NewExporter(Options{Format: FormatJSON, Title: "Session"})

	var out strings.Builder
	if err := e.Export(sampleTranscript(), &out); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded struct {
		Title    string              `json:"title"`
		Messages []agent.ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal([]byte(out.String()), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.Title != "Session" {
		t.Errorf("title = %q, want Session", decoded.Title)
	}
	if len(decoded.Messages) != 3 {
		t.Errorf("messages = %d, want 3", len(decoded.Messages))
	}
	if decoded.Messages[0].Body != "open youtube" {
		t.Errorf("first message = %q, want original order", decoded.Messages[0].Body)
	}
}

func TestExportMarkdown(t *testing.T) {
	e := NewExporter(Options{Format: FormatMarkdown, Title: "Session", IncludeTimestamps: true})

	var out strings.Builder
	if err := e.Export(sampleTranscript(), &out); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"# Session", "### You - 10:00:01", "### Luma", "### [SYSTEM]", "open youtube"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}
}

func TestExportText(t *testing.T) {
	e := NewExporter(Options{Format: FormatText})

	var out strings.Builder
	if err := e.Export(sampleTranscript(), &out); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "You: open youtube") {
		t.Errorf("text export missing message line:\n%s", got)
	}
	if strings.Contains(got, "10:00:01") {
		t.Errorf("timestamps should be omitted by default:\n%s", got)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	e := NewExporter(Options{Format: "pdf"})
	if err := e.Export(sampleTranscript(), &strings.Builder{}); err == nil {
		t.Error("Export() with unknown format expected error")
	}
}
