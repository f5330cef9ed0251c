package receipt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/policykit/policyconv/internal/observability"
)

// MaxErrorLength caps the error text stored in a receipt
const MaxErrorLength = 2048

// Session is one command run, from parsed flags to exit
type Session struct {
	ctx     context.Context
	command string
	args    []string
	started time.Time
}

// Start opens a session for command with its raw arguments
func Start(ctx context.Context, command string, args []string) *Session {
	return &Session{ctx: ctx, command: command, args: args, started: time.Now()}
}

// Option fills in what a command learned about the policy it handled
type Option func(*Receipt)

// WithInput names the document read and its canonical digest
func WithInput(path, digest string) Option {
	return func(r *Receipt) { r.Input = newDocumentRef(path, digest) }
}

// WithOutput names the document written, empty for stdout
func WithOutput(path, digest string) Option {
	return func(r *Receipt) { r.Output = newDocumentRef(path, digest) }
}

// WithPolicy is skipped when the policy has neither id nor name
func WithPolicy(id, name string) Option {
	return func(r *Receipt) {
		if id != "" || name != "" {
			r.Policy = &PolicyRef{ID: id, Name: name}
		}
	}
}

// WithValidation records the rule set outcome and the rules that failed
func WithValidation(ruleSet, status string, hits []RuleHit) Option {
	return func(r *Receipt) {
		r.Validation = &ValidationSummary{RuleSet: ruleSet, Status: status, RulesHit: hits}
	}
}

// WithDiff records change counts by severity
func WithDiff(critical, moderate, info int, summary string) Option {
	return func(r *Receipt) {
		r.Diff = &DiffSummary{Critical: critical, Moderate: moderate, Info: info, Summary: summary}
	}
}

// newDocumentRef adds the file hash for real paths. Stdin ("-") and stdout
// only get the canonical digest.
func newDocumentRef(path, digest string) *DocumentRef {
	if path == "" && digest == "" {
		return nil
	}
	ref := &DocumentRef{Path: path, Digest: digest}
	if path != "" && path != "-" {
		if sum, err := fileSHA256(path); err == nil {
			ref.SHA256 = sum
		}
	}
	return ref
}

// Finish builds the receipt for a completed command and hands it to the
// sink in the session context, if any
func (s *Session) Finish(err error, opts ...Option) error {
	sink := SinkFrom(s.ctx)
	if sink == nil {
		return nil
	}

	args, redacted := RedactArgs(s.args)
	r := Receipt{
		SchemaVersion: ReceiptSchemaVersion,
		OpID:          observability.OpID(s.ctx),
		TsStart:       s.started.Format(time.RFC3339Nano),
		TsEnd:         time.Now().Format(time.RFC3339Nano),
		Command:       s.command,
		Args:          args,
		ArgsRedacted:  redacted,
		Result:        Result{Status: "success"},
	}
	if err != nil {
		r.Result = Result{Status: "fail", Error: truncate(err.Error(), MaxErrorLength)}
	}
	for _, opt := range opts {
		opt(&r)
	}
	return sink.Write(r)
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
