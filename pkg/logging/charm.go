package logging

import (
	"context"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// charmLogger adapts charmbracelet/log to the Logger interface
type charmLogger struct {
	l      *log.Logger
	closer io.Closer
}

func newCharmLogger(w io.Writer, format Format, level Level, closer io.Closer) *charmLogger {
	var formatter log.Formatter
	switch format {
	case FormatJSON:
		formatter = log.JSONFormatter
	case FormatLogfmt:
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "extsort",
		Formatter:       formatter,
		Level:           charmLevel(level),
	})

	return &charmLogger{l: l, closer: closer}
}

// NewConsoleLogger creates a logger writing to w (stderr when nil)
func NewConsoleLogger(w io.Writer, format Format, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return newCharmLogger(w, format, level, nil)
}

// Debug logs a debug message
func (c *charmLogger) Debug(ctx context.Context, msg string, fields Fields) {
	c.l.Debug(msg, keyvals(fields)...)
}

// Info logs an info message
func (c *charmLogger) Info(ctx context.Context, msg string, fields Fields) {
	c.l.Info(msg, keyvals(fields)...)
}

// Warn logs a warning message
func (c *charmLogger) Warn(ctx context.Context, msg string, fields Fields) {
	c.l.Warn(msg, keyvals(fields)...)
}

// Error logs an error message
func (c *charmLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	kv := keyvals(fields)
	if err != nil {
		kv = append([]interface{}{"error", err.Error()}, kv...)
	}
	c.l.Error(msg, kv...)
}

// WithFields returns a logger with additional fields
func (c *charmLogger) WithFields(fields Fields) Logger {
	return &charmLogger{
		l:      c.l.With(keyvals(fields)...),
		closer: c.closer,
	}
}

// Close closes the underlying writer if the logger owns one
func (c *charmLogger) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// keyvals flattens fields in key order so output is stable
func keyvals(fields Fields) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}

func charmLevel(level Level) log.Level {
	switch level {
	case DebugLevel:
		return log.DebugLevel
	case WarnLevel:
		return log.WarnLevel
	case ErrorLevel:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
