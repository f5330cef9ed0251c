// Package criteria holds the static table of policy criterion fields and the
// wire encoding each one uses for its values.
package criteria

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category selects the value codec for a field
type Category int

const (
	Plain Category = iota
	Numeric
	Compound
	EnvironmentVariable
	ImageSigning
)

var categoryNames = map[string]Category{
	"plain":                Plain,
	"numeric":              Numeric,
	"compound":             Compound,
	"environment_variable": EnvironmentVariable,
	"image_signing":        ImageSigning,
}

// String returns the yaml name of the category
func (c Category) String() string {
	for name, cat := range categoryNames {
		if cat == c {
			return name
		}
	}
	return "unknown"
}

// IsCompound reports whether values are delimiter-joined sub-values
func (c Category) IsCompound() bool {
	return c == Compound || c == EnvironmentVariable
}

//go:embed fields.yaml
var fieldsYAML []byte

// Field one table entry
type Field struct {
	Name     string
	Category Category
}

// Table is immutable once built
type Table struct {
	byName map[string]Category
}

type fileFormat struct {
	Fields []struct {
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
	} `yaml:"fields"`
}

// Load parses a field table document
func Load(data []byte) (*Table, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse field table: %w", err)
	}

	t := &Table{byName: make(map[string]Category, len(doc.Fields))}
	for i, f := range doc.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d: missing name", i)
		}
		cat, ok := categoryNames[f.Category]
		if !ok {
			return nil, fmt.Errorf("field %q: unknown category %q", f.Name, f.Category)
		}
		if _, dup := t.byName[f.Name]; dup {
			return nil, fmt.Errorf("field %q: listed twice", f.Name)
		}
		t.byName[f.Name] = cat
	}
	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table, built on first use
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(fieldsYAML)
		if err != nil {
			// embedded document is part of the build
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// Category of a field; unknown names are Plain
func (t *Table) Category(name string) Category {
	cat, _ := t.Lookup(name)
	return cat
}

// Lookup reports whether the field is known
func (t *Table) Lookup(name string) (Category, bool) {
	cat, ok := t.byName[name]
	return cat, ok
}

// Fields sorted by name
func (t *Table) Fields() []Field {
	fields := make([]Field, 0, len(t.byName))
	for name, cat := range t.byName {
		fields = append(fields, Field{Name: name, Category: cat})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}
