// Package export writes the chat transcript to different formats.
// Supported formats include JSON, Markdown, and plain text.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/machovotrish/luma/pkg/agent"
)

// Format represents the export format type.
type Format string

const (
	// FormatJSON exports the transcript as JSON
	FormatJSON Format = "json"
	// FormatMarkdown exports the transcript as Markdown
	FormatMarkdown Format = "markdown"
	// FormatText exports the transcript as plain text
	FormatText Format = "text"
)

// Options contains options for exporting transcripts.
type Options struct {
	// Format specifies the export format (json, markdown, text)
	Format Format
	// IncludeTimestamps includes message timestamps in the export
	IncludeTimestamps bool
	// Title is an optional title for the exported transcript
	Title string
}

// Exporter handles transcript exports to different formats.
type Exporter struct {
	options Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(options Options) *Exporter {
	return &Exporter{options: options}
}

// Export writes the transcript to the writer in the configured format.
func (e *Exporter) Export(messages []agent.ChatMessage, writer io.Writer) error {
	switch e.options.Format {
	case FormatJSON:
		return e.exportJSON(messages, writer)
	case FormatMarkdown:
		return e.exportMarkdown(messages, writer)
	case FormatText:
		return e.exportText(messages, writer)
	default:
		return fmt.Errorf("unsupported export format: %s", e.options.Format)
	}
}

func (e *Exporter) exportJSON(messages []agent.ChatMessage, writer io.Writer) error {
	output := struct {
		Title      string              `json:"title,omitempty"`
		ExportedAt string              `json:"exported_at"`
		Messages   []agent.ChatMessage `json:"messages"`
	}{
		Title:      e.options.Title,
		ExportedAt: time.Now().Format(time.RFC3339),
		Messages:   messages,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (e *Exporter) exportMarkdown(messages []agent.ChatMessage, writer io.Writer) error {
	var sb strings.Builder

	if e.options.Title != "" {
		sb.WriteString("# ")
		sb.WriteString(e.options.Title)
		sb.WriteString("\n\n")
	}

	sb.WriteString("*Exported: ")
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("*\n\n")

	for _, msg := range messages {
		if msg.Kind == agent.KindSystem || msg.Kind == agent.KindError {
			sb.WriteString("### [")
			sb.WriteString(strings.ToUpper(string(msg.Kind)))
			sb.WriteString("]")
		} else {
			sb.WriteString("### ")
			sb.WriteString(msg.Sender)
		}

		if e.options.IncludeTimestamps && msg.Timestamp != "" {
			sb.WriteString(" - ")
			sb.WriteString(msg.Timestamp)
		}

		sb.WriteString("\n\n")
		sb.WriteString(msg.Body)
		sb.WriteString("\n\n---\n\n")
	}

	_, err := writer.Write([]byte(sb.String()))
	return err
}

func (e *Exporter) exportText(messages []agent.ChatMessage, writer io.Writer) error {
	var sb strings.Builder

	if e.options.Title != "" {
		sb.WriteString(e.options.Title)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("=", len(e.options.Title)))
		sb.WriteString("\n\n")
	}

	for _, msg := range messages {
		if e.options.IncludeTimestamps && msg.Timestamp != "" {
			sb.WriteString("[")
			sb.WriteString(msg.Timestamp)
			sb.WriteString("] ")
		}
		sb.WriteString(msg.Sender)
		sb.WriteString(": ")
		sb.WriteString(msg.Body)
		sb.WriteString("\n")
	}

	_, err := writer.Write([]byte(sb.String()))
	return err
}
