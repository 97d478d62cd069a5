// Package log provides structured logging for Luma built on zerolog.
// The logger writes to an operator-facing destination (stderr or a file),
// never to the chat window; the TUI swaps the destination at startup so
// log output cannot corrupt the alternate screen.
package log

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Re-exported levels so callers do not need to import zerolog directly.
const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(io.Discard).With().Timestamp().Logger()
)

// InitLogger configures the global logger with the given writer and level.
// When pretty is true, output is rendered as human-readable console lines;
// otherwise each entry is a single JSON line.
func InitLogger(w io.Writer, level zerolog.Level, pretty bool) {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Entry is a log entry under construction. Fields accumulate until one of
// the emitting methods (Debug, Info, Warn, Error) is called.
type Entry struct {
	fields map[string]interface{}
	err    error
}

// WithField returns an entry with a single key/value field attached.
func WithField(key string, value interface{}) *Entry {
	return &Entry{fields: map[string]interface{}{key: value}}
}

// WithFields returns an entry with the given fields attached.
func WithFields(fields map[string]interface{}) *Entry {
	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Entry{fields: copied}
}

// WithError returns an entry with the error attached.
func WithError(err error) *Entry {
	return &Entry{err: err}
}

// WithField adds a field to the entry.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	if e.fields == nil {
		e.fields = make(map[string]interface{})
	}
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the entry.
func (e *Entry) WithFields(fields map[string]interface{}) *Entry {
	if e.fields == nil {
		e.fields = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError attaches an error to the entry.
func (e *Entry) WithError(err error) *Entry {
	e.err = err
	return e
}

func (e *Entry) emit(ev *zerolog.Event, msg string) {
	if e.err != nil {
		ev = ev.Err(e.err)
	}
	ev.Fields(e.fields).Msg(msg)
}

func (e *Entry) emitf(ev *zerolog.Event, format string, args ...interface{}) {
	if e.err != nil {
		ev = ev.Err(e.err)
	}
	ev.Fields(e.fields).Msgf(format, args...)
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs the entry at debug level.
func (e *Entry) Debug(msg string) { l := current(); e.emit(l.Debug(), msg) }

// Info logs the entry at info level.
func (e *Entry) Info(msg string) { l := current(); e.emit(l.Info(), msg) }

// Warn logs the entry at warn level.
func (e *Entry) Warn(msg string) { l := current(); e.emit(l.Warn(), msg) }

// Error logs the entry at error level.
func (e *Entry) Error(msg string) { l := current(); e.emit(l.Error(), msg) }

// Errorf logs the entry at error level with a format string.
func (e *Entry) Errorf(format string, args ...interface{}) {
	l := current()
	e.emitf(l.Error(), format, args...)
}

// Debug logs a message at debug level without fields.
func Debug(msg string) { l := current(); l.Debug().Msg(msg) }

// Info logs a message at info level without fields.
func Info(msg string) { l := current(); l.Info().Msg(msg) }

// Warn logs a message at warn level without fields.
func Warn(msg string) { l := current(); l.Warn().Msg(msg) }

// Error logs a message at error level without fields.
func Error(msg string) { l := current(); l.Error().Msg(msg) }
