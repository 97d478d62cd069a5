// Package sink intercepts the agent's line-oriented progress output.
// A Classifier is handed to the adapter as its log sink; it buffers partial
// writes into whole lines, tags each line with a category derived from
// simple substring matching, and forwards the marked-up line to a consumer.
// The raw bytes can additionally be teed to a secondary writer so the
// operator console keeps the unmodified stream.
package sink

import (
	"io"
	"strings"
	"sync"
)

// Category labels a classified progress line.
type Category string

const (
	CategoryIteration   Category = "iteration"
	CategoryEvaluation  Category = "evaluation"
	CategoryMemory      Category = "memory"
	CategoryThought     Category = "thought"
	CategoryAction      Category = "action"
	CategoryObservation Category = "observation"
	CategoryFinal       Category = "final"
	CategoryError       Category = "error"
	CategoryWarning     Category = "warning"
	CategoryOther       Category = "other"
)

// markers maps a category to the prefix shown in the chat window.
var markers = map[Category]string{
	CategoryIteration:   "🔄",
	CategoryEvaluation:  "🔍",
	CategoryMemory:      "🧠",
	CategoryThought:     "💭",
	CategoryAction:      "⚡",
	CategoryObservation: "👁",
	CategoryFinal:       "✅",
	CategoryError:       "❌",
	CategoryWarning:     "⚠️",
}

// Classified is one complete, categorized progress line.
type Classified struct {
	// Category is the matched category
	Category Category
	// Text is the marker-prefixed display line
	Text string
	// Raw is the trimmed line before markup
	Raw string
}

// EmitFunc consumes classified lines in write order.
type EmitFunc func(line Classified)

// Classifier is an io.Writer that line-buffers and classifies agent output.
// It is safe for use from a single writer goroutine; Flush may be called
// from another goroutine after the producer has stopped writing.
type Classifier struct {
	mu   sync.Mutex
	emit EmitFunc
	tee  io.Writer
	buf  strings.Builder
}

// NewClassifier creates a classifier that forwards lines to emit.
func NewClassifier(emit EmitFunc) *Classifier {
	return &Classifier{emit: emit}
}

// NewTeeClassifier creates a classifier that also copies the raw byte
// stream to w, unmodified.
func NewTeeClassifier(emit EmitFunc, w io.Writer) *Classifier {
	return &Classifier{emit: emit, tee: w}
}

// Write implements io.Writer. Complete lines are classified and emitted
// immediately; a trailing partial line stays buffered until the next write
// supplies its line break or Flush is called.
func (c *Classifier) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tee != nil {
		// Tee failures must not disturb the agent's write path.
		_, _ = c.tee.Write(p)
	}

	c.buf.Write(p)

	content := c.buf.String()
	c.buf.Reset()

	for {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			break
		}
		c.emitLine(content[:idx])
		content = content[idx+1:]
	}

	// Keep the incomplete remainder buffered.
	c.buf.WriteString(content)

	return len(p), nil
}

// Flush emits any buffered trailing partial line as a final complete line.
// Called once when the invocation returns; a second Flush is a no-op.
func (c *Classifier) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	remainder := c.buf.String()
	c.buf.Reset()
	c.emitLine(remainder)
}

func (c *Classifier) emitLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	category := Classify(line)
	c.emit(Classified{
		Category: category,
		Text:     Markup(category, line),
		Raw:      line,
	})
}

// Classify maps a progress line to its category by substring matching.
// The match vocabulary follows the agent's own log phrasing.
func Classify(line string) Category {
	upper := strings.ToUpper(line)

	switch {
	case strings.Contains(line, "Iteration"):
		return CategoryIteration
	case strings.Contains(line, "Evaluate"):
		return CategoryEvaluation
	case strings.Contains(line, "Memory"):
		return CategoryMemory
	case strings.Contains(line, "Thought"):
		return CategoryThought
	case strings.Contains(line, "Action"):
		return CategoryAction
	case strings.Contains(line, "Observation"):
		return CategoryObservation
	case strings.Contains(line, "Final Answer"):
		return CategoryFinal
	case strings.Contains(upper, "ERROR"), strings.Contains(upper, "EXCEPTION"):
		return CategoryError
	case strings.Contains(upper, "WARNING"):
		return CategoryWarning
	default:
		return CategoryOther
	}
}

// Markup prefixes a line with its category marker. Lines in the "other"
// category pass through untouched.
func Markup(category Category, line string) string {
	marker, ok := markers[category]
	if !ok {
		return line
	}
	return marker + " " + line
}
