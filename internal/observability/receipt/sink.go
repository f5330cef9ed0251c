package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives the receipt of each finished command
type Sink interface {
	Write(r Receipt) error
	Close() error
}

// Mode is how --receipt opens its file
type Mode string

const (
	ModeOverwrite Mode = "overwrite" // one JSON object per file
	ModeAppend    Mode = "append"    // one JSON line per run
)

// ParseMode accepts the --receipt-mode values
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeOverwrite, ModeAppend:
		return m, nil
	case "":
		return ModeOverwrite, nil
	default:
		return "", fmt.Errorf("unknown receipt mode %q (want %s or %s)", s, ModeOverwrite, ModeAppend)
	}
}

// FileSink writes receipts to one file. Append mode lets a CI job keep a
// log of every conversion and validation it ran.
type FileSink struct {
	mu   sync.Mutex
	f    *os.File
	mode Mode
}

// OpenFile creates the receipt file and any missing parent directories
func OpenFile(path string, mode Mode) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == ModeAppend {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt %s: %w", path, err)
	}
	return &FileSink{f: f, mode: mode}, nil
}

func (s *FileSink) Write(r Receipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}
	if s.mode == ModeAppend {
		data = append(data, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return errors.New("receipt file already closed")
	}
	if _, err := s.f.Write(data); err != nil {
		return fmt.Errorf("failed to write receipt %s: %w", s.f.Name(), err)
	}
	return nil
}

// Close is safe to call twice
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

type sinkKey struct{}

// WithSink routes the receipts of commands run under ctx to s
func WithSink(ctx context.Context, s Sink) context.Context {
	return context.WithValue(ctx, sinkKey{}, s)
}

// SinkFrom is nil when --receipt was not given
func SinkFrom(ctx context.Context) Sink {
	s, _ := ctx.Value(sinkKey{}).(Sink)
	return s
}
