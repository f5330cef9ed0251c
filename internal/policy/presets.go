package policy

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/policykit/policyconv/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// presetCache holds loaded presets to avoid re-parsing
var (
	presetMu    sync.Mutex
	presetCache = map[string]*models.ValidationRuleSet{}
)

// presetFiles maps preset names to embedded file paths
var presetFiles = map[string]string{
	"wizard": "presets/wizard.yaml",
	"lint":   "presets/lint.yaml",
}

// GetPreset returns a rule set by name, or nil if not found
func GetPreset(name string) *models.ValidationRuleSet {
	presetMu.Lock()
	defer presetMu.Unlock()

	if cached, ok := presetCache[name]; ok {
		return cached
	}

	path, ok := presetFiles[name]
	if !ok {
		return nil
	}

	data, err := presetFS.ReadFile(path)
	if err != nil {
		return nil
	}

	var rules models.ValidationRuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil
	}

	presetCache[name] = &rules
	return &rules
}

// ListPresetNames returns the preset names, sorted
func ListPresetNames() []string {
	names := make([]string, 0, len(presetFiles))
	for name := range presetFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustGetPreset returns a preset or panics (for tests)
func MustGetPreset(name string) *models.ValidationRuleSet {
	p := GetPreset(name)
	if p == nil {
		panic(fmt.Sprintf("preset %q not found", name))
	}
	return p
}

// LoadRuleSet reads a custom rule set from a YAML file
func LoadRuleSet(path string) (*models.ValidationRuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	var rules models.ValidationRuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rule YAML: %w", err)
	}

	if len(rules.Rules) == 0 {
		return nil, fmt.Errorf("rule set must have at least one rule")
	}

	return &rules, nil
}
