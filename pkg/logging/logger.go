// Package logging wraps log/slog with the small field vocabulary this
// codebase uses (session, request, intent, duration). Components get their
// own sub-logger so log lines are attributable without repeating the tag.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Level mirrors slog levels with a string config surface.
type Level int

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logging configuration.
type Config struct {
	Level  Level
	Format string // "json" or "text"
	Output string // "stdout", "stderr", or a file path
}

// DefaultConfig returns sensible defaults for local runs.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: "text", Output: "stdout"}
}

// Logger is the process-wide structured logger.
type Logger struct {
	cfg     Config
	slogger *slog.Logger
	file    *os.File
}

// New creates a logger per cfg. File outputs get their directory created.
func New(cfg Config) (*Logger, error) {
	l := &Logger{cfg: cfg}

	var w io.Writer
	switch cfg.Output {
	case "stdout", "":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		w = f
	}

	opts := &slog.HandlerOptions{Level: slog.Level(int(cfg.Level) * 4)}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l.slogger = slog.New(h)
	return l, nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// WithComponent returns a logger tagging every line with the component name.
func (l *Logger) WithComponent(component string) *ComponentLogger {
	return &ComponentLogger{slogger: l.slogger.With(slog.String("component", component))}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.slogger.Debug(msg, attrs(fields)...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.slogger.Info(msg, attrs(fields)...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.slogger.Warn(msg, attrs(fields)...) }

func (l *Logger) Error(msg string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields, Err(err))
	}
	l.slogger.Error(msg, attrs(fields)...)
}

// ComponentLogger is a Logger bound to one component tag.
type ComponentLogger struct {
	slogger *slog.Logger
}

func (c *ComponentLogger) Debug(msg string, fields ...Field) { c.slogger.Debug(msg, attrs(fields)...) }
func (c *ComponentLogger) Info(msg string, fields ...Field)  { c.slogger.Info(msg, attrs(fields)...) }
func (c *ComponentLogger) Warn(msg string, fields ...Field)  { c.slogger.Warn(msg, attrs(fields)...) }

func (c *ComponentLogger) Error(msg string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields, Err(err))
	}
	c.slogger.Error(msg, attrs(fields)...)
}

// Field is a structured log field.
type Field struct {
	Key   string
	Value any
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

// Field constructors. Domain-specific ones first.

func Session(id string) Field             { return Field{Key: "session_id", Value: id} }
func Request(id string) Field             { return Field{Key: "request_id", Value: id} }
func Intent(v string) Field               { return Field{Key: "intent", Value: v} }
func String(key, value string) Field      { return Field{Key: key, Value: value} }
func Int(key string, value int) Field     { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field   { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}
func Any(key string, value any) Field { return Field{Key: key, Value: value} }
func Err(err error) Field             { return Field{Key: "error", Value: err.Error()} }

// ParseLevel maps a config string to a Level. Unknown strings mean info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
