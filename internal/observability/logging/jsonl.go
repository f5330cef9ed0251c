package logging

import (
	"context"
	"encoding/json"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/policykit/policyconv/internal/observability"
	"github.com/policykit/policyconv/internal/version"
)

// SchemaVersion of a jsonl log line
const SchemaVersion = "1.0"

// jsonlLogger writes one JSON object per line for log pipelines. Every
// line names the policyconv build so a converted policy can be traced to
// the converter that produced it.
type jsonlLogger struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	min    severity
}

type line struct {
	TS            string         `json:"ts"`
	Level         string         `json:"level"`
	Event         string         `json:"event,omitempty"`
	Component     string         `json:"component"`
	OpID          string         `json:"op_id"`
	SchemaVersion string         `json:"schema_version"`
	Build         string         `json:"policyconv_version,omitempty"`
	Go            string         `json:"go_version,omitempty"`
	Msg           string         `json:"msg,omitempty"`
	Fields        map[string]any `json:"fields,omitempty"`
}

func newLine(level severity, component string) line {
	return line{
		TS:            time.Now().Format(time.RFC3339Nano),
		Level:         level.String(),
		Component:     component,
		SchemaVersion: SchemaVersion,
		Build:         version.BuildVersion(),
		Go:            runtime.Version(),
	}
}

func (j *jsonlLogger) message(level severity, component, msg string, fields []any) {
	if level < j.min {
		return
	}
	l := newLine(level, component)
	l.Msg = msg
	l.Fields = fieldMap(fields)
	j.write(l)
}

// Event lines are always written and carry the op id of the run
func (j *jsonlLogger) Event(ctx context.Context, event string, fields map[string]any) {
	l := newLine(sevInfo, "cli")
	l.Event = "policyconv." + event
	l.OpID = observability.OpID(ctx)
	l.Fields = fields
	j.write(l)
}

// write drops lines it cannot encode or deliver; logging never fails a
// conversion
func (j *jsonlLogger) write(l line) {
	data, err := json.Marshal(l)
	if err != nil {
		return
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	_, _ = j.out.Write(data)
}

func (j *jsonlLogger) Debug(component, msg string, fields ...any) {
	j.message(sevDebug, component, msg, fields)
}

func (j *jsonlLogger) Info(component, msg string, fields ...any) {
	j.message(sevInfo, component, msg, fields)
}

func (j *jsonlLogger) Warn(component, msg string, fields ...any) {
	j.message(sevWarn, component, msg, fields)
}

func (j *jsonlLogger) Error(component, msg string, fields ...any) {
	j.message(sevError, component, msg, fields)
}

func (j *jsonlLogger) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}
