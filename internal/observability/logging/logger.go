// Package logging carries the component logger used by the converters and
// the CLI. Plain messages explain what happened to a policy document;
// events are the start and completion records of each command.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Logger takes alternating key/value fields after the message
type Logger interface {
	Debug(component, msg string, fields ...any)
	Info(component, msg string, fields ...any)
	Warn(component, msg string, fields ...any)
	Error(component, msg string, fields ...any)
	Event(ctx context.Context, event string, fields map[string]any)
	Close() error
}

type loggerKey struct{}

// WithLogger makes l the logger for conversions run under ctx
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// From never returns nil; without a logger the output is discarded
func From(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return discard{}
}

// NewLogger opens the output named by cfg. File output is appended to so
// several runs can share one log.
func NewLogger(cfg Config) (Logger, error) {
	floor, err := parseSeverity(cfg.Level)
	if err != nil {
		return nil, err
	}

	out, closer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	switch cfg.Format {
	case "", "pretty":
		return &prettyLogger{out: out, closer: closer, min: floor}, nil
	case "jsonl":
		return &jsonlLogger{out: out, closer: closer, min: floor}, nil
	case "none":
		return discard{closer: closer}, nil
	}
	if closer != nil {
		_ = closer.Close()
	}
	return nil, fmt.Errorf("unknown log format %q (want pretty, jsonl or none)", cfg.Format)
}

func openOutput(path string) (io.Writer, io.Closer, error) {
	if path == "" || path == "stderr" {
		return os.Stderr, nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log output: %w", err)
	}
	return f, f, nil
}

// fieldMap pairs up key/value arguments; a trailing key without a value is
// dropped
func fieldMap(fields []any) map[string]any {
	if len(fields) < 2 {
		return nil
	}
	m := make(map[string]any, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			m[key] = fields[i+1]
		}
	}
	return m
}

type discard struct {
	closer io.Closer
}

func (discard) Debug(string, string, ...any)                  {}
func (discard) Info(string, string, ...any)                   {}
func (discard) Warn(string, string, ...any)                   {}
func (discard) Error(string, string, ...any)                  {}
func (discard) Event(context.Context, string, map[string]any) {}

func (d discard) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
