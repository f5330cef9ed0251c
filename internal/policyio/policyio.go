// Package policyio reads and writes policy documents as JSON or YAML.
// YAML input is normalized to JSON first so the json struct tags are the
// single source of field names. Plain YAML scalars under string-typed policy
// keys stay strings, so `value: 5` and `policyVersion: 1.1` need no quotes.
package policyio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format of a document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
	}
}

// DetectFormat from the file extension, falling back to the first
// non-space byte
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// ReadFile reads path, or stdin for "-"
func ReadFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ToJSON normalizes a document to JSON
func ToJSON(data []byte, format Format) ([]byte, error) {
	if format == FormatJSON {
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON document")
		}
		return data, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	var doc interface{}
	if node.Kind != 0 {
		keepStrings(&node)
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	out, err := json.Marshal(normalize(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	return out, nil
}

// Decode a JSON or YAML document into v
func Decode(data []byte, format Format, v interface{}) error {
	raw, err := ToJSON(data, format)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// Load reads and decodes path into v, returning the normalized JSON too
func Load(path string, stdin io.Reader, v interface{}) ([]byte, error) {
	data, err := ReadFile(path, stdin)
	if err != nil {
		return nil, err
	}
	raw, err := ToJSON(data, DetectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("%s: failed to decode document: %w", path, err)
	}
	return raw, nil
}

// Encode v as indented JSON or YAML, with a trailing newline
func Encode(w io.Writer, v interface{}, format Format) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	switch format {
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("failed to convert JSON to YAML: %w", err)
		}
		blockStyle(&doc)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("failed to write YAML: %w", err)
		}
		return enc.Close()
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to indent JSON: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}
}

// blockStyle clears the flow style the JSON source leaves on every node
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// stringKeys hold strings in every policy and schedule document
var stringKeys = map[string]bool{
	"id": true, "name": true, "description": true, "rationale": true,
	"remediation": true, "lastUpdated": true, "policyVersion": true,
	"source": true, "key": true, "value": true, "fieldName": true,
	"sectionName": true, "cluster": true, "namespace": true,
	"expiration": true, "tactic": true, "time": true,
	"SORTName": true, "SORTLifecycleStage": true,
}

// stringListKeys hold lists of strings
var stringListKeys = map[string]bool{
	"categories": true, "notifiers": true, "techniques": true,
	"excludedImageNames": true, "arrayValue": true,
	"daysOfWeek": true, "daysOfMonth": true,
}

// keepStrings retags plain scalars under string keys as !!str so that
// bools and numbers decode as the text that was written
func keepStrings(n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			keepStrings(c)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			switch {
			case stringKeys[key.Value]:
				asString(val)
			case stringListKeys[key.Value] && val.Kind == yaml.SequenceNode:
				for _, item := range val.Content {
					asString(item)
				}
			}
			keepStrings(val)
		}
	}
}

func asString(n *yaml.Node) {
	if n.Kind != yaml.ScalarNode {
		return
	}
	if tag := n.ShortTag(); tag == "!!null" || tag == "!!str" {
		return
	}
	n.Tag = "!!str"
}

// normalize turns yaml.v3 maps with non-string keys into JSON-compatible
// maps
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []interface{}:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
