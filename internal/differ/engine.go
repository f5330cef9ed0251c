// Package differ compares two policies and explains the differences.
package differ

import (
	"encoding/json"
	"fmt"

	"github.com/policykit/policyconv/internal/models"
	"github.com/wI2L/jsondiff"
)

// DiffType indicates what kind of difference was detected
type DiffType string

const (
	DiffTypeAdded   DiffType = "added"
	DiffTypeRemoved DiffType = "removed"
	DiffTypeChanged DiffType = "changed"
)

// Change is one translated difference
type Change struct {
	Path     string
	DiffType DiffType
	Message  string
	Severity SeverityLevel
}

// DiffResult contains the complete diff result
type DiffResult struct {
	HasChanges bool
	Patches    jsondiff.Patch // raw JSON patch, before -> after
	Changes    []Change
}

// MaxSeverity of all changes; SeveritySafe when there are none
func (r *DiffResult) MaxSeverity() SeverityLevel {
	highest := SeveritySafe
	for _, c := range r.Changes {
		if c.Severity > highest {
			highest = c.Severity
		}
	}
	return highest
}

// Engine performs diff operations
type Engine struct {
	equivalent bool
	ignores    []string
}

// Option configures an Engine
type Option func(*Engine)

// Equivalent ignores array order, so exclusions reordered by a round trip
// compare equal
func Equivalent() Option {
	return func(e *Engine) { e.equivalent = true }
}

// Ignore skips the given JSON pointers, e.g. "/lastUpdated"
func Ignore(pointers ...string) Option {
	return func(e *Engine) { e.ignores = append(e.ignores, pointers...) }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare before against after
func (e *Engine) Compare(before, after *models.ServerPolicy) (*DiffResult, error) {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal before policy: %w", err)
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal after policy: %w", err)
	}

	var opts []jsondiff.Option
	if e.equivalent {
		opts = append(opts, jsondiff.Equivalent())
	}
	if len(e.ignores) > 0 {
		opts = append(opts, jsondiff.Ignores(e.ignores...))
	}

	patches, err := jsondiff.CompareJSON(beforeJSON, afterJSON, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff: %w", err)
	}

	changes := newTranslator(before, after).Translate(patches)
	return &DiffResult{
		HasChanges: len(changes) > 0,
		Patches:    patches,
		Changes:    changes,
	}, nil
}
