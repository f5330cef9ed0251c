package logging

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// prettyLogger writes one human readable line per message. Events are
// machine records and are only emitted by the jsonl logger.
type prettyLogger struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	min    severity
}

func (p *prettyLogger) message(level severity, component, msg string, fields []any) {
	if level < p.min {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-5s [%s] %s", strings.ToUpper(level.String()), component, msg)

	m := fieldMap(fields)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, m[k])
	}
	b.WriteByte('\n')

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, b.String())
}

func (p *prettyLogger) Debug(component, msg string, fields ...any) {
	p.message(sevDebug, component, msg, fields)
}

func (p *prettyLogger) Info(component, msg string, fields ...any) {
	p.message(sevInfo, component, msg, fields)
}

func (p *prettyLogger) Warn(component, msg string, fields ...any) {
	p.message(sevWarn, component, msg, fields)
}

func (p *prettyLogger) Error(component, msg string, fields ...any) {
	p.message(sevError, component, msg, fields)
}

func (p *prettyLogger) Event(context.Context, string, map[string]any) {}

func (p *prettyLogger) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
