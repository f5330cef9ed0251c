package policy

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestEmbeddedPresetFilesExist fails when the //go:embed directive or the
// preset paths drift apart.
func TestEmbeddedPresetFilesExist(t *testing.T) {
	for name, path := range presetFiles {
		t.Run(name, func(t *testing.T) {
			data, err := presetFS.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read embedded file %q: %v (check //go:embed directive)", path, err)
			}
			if len(data) < 10 {
				t.Errorf("embedded file %q suspiciously small (%d bytes)", path, len(data))
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	for _, name := range ListPresetNames() {
		t.Run(name, func(t *testing.T) {
			preset := GetPreset(name)
			if preset == nil {
				t.Fatalf("GetPreset(%q) returned nil (check embed directive and YAML parsing)", name)
			}
			if preset.Name == "" {
				t.Errorf("preset %q has empty Name field", name)
			}
			if len(preset.Rules) == 0 {
				t.Errorf("preset %q has no rules", name)
			}
			for _, rule := range preset.Rules {
				if rule.Name == "" || rule.Expr == "" || rule.FailureMsg == "" {
					t.Errorf("preset %q has incomplete rule %+v", name, rule)
				}
			}
			if GetPreset(name) != preset {
				t.Error("second lookup should hit the cache")
			}
		})
	}

	if GetPreset("nope") != nil {
		t.Error("unknown preset should be nil")
	}
}

func TestListPresetNames(t *testing.T) {
	if got := ListPresetNames(); !reflect.DeepEqual(got, []string{"lint", "wizard"}) {
		t.Errorf("ListPresetNames = %v", got)
	}
}

func TestLoadRuleSet(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "rules.yaml")
	content := `
name: "Team Rules"
rules:
  - name: "needs_notifier"
    expr: 'size(input.notifiers) > 0'
    failure_msg: "Attach a notifier"
    severity: warn
`
	if err := os.WriteFile(good, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRuleSet(good)
	if err != nil {
		t.Fatalf("LoadRuleSet: %v", err)
	}
	if rules.Name != "Team Rules" || len(rules.Rules) != 1 || rules.Rules[0].Severity != "warn" {
		t.Errorf("rules = %+v", rules)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("name: empty\nrules: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRuleSet(empty); err == nil {
		t.Error("expected error for rule set without rules")
	}

	if _, err := LoadRuleSet(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
