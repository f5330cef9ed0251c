package differ

import (
	"testing"

	"github.com/policykit/policyconv/internal/models"
)

func basePolicy() *models.ServerPolicy {
	return &models.ServerPolicy{
		PolicyFields: models.PolicyFields{
			ID:                 "p-1",
			Name:               "Fixable CVSS >= 7",
			Description:        "Alert on fixable vulnerabilities",
			Categories:         []string{"Vulnerability Management"},
			LifecycleStages:    []models.LifecycleStage{models.LifecycleBuild, models.LifecycleDeploy},
			EventSource:        models.EventSourceNotApplicable,
			Scope:              []models.Scope{},
			Severity:           models.SeverityHigh,
			EnforcementActions: []models.EnforcementAction{},
			Notifiers:          []string{},
			LastUpdated:        "2024-01-01T00:00:00Z",
			MitreAttackVectors: []models.MitreAttackVector{},
		},
		Exclusions: []models.Exclusion{
			{Deployment: &models.DeploymentExclusion{Name: "d1"}},
			{Image: &models.ImageExclusion{Name: "img1"}},
		},
		PolicySections: []models.PolicySection{
			{
				SectionName: "Section 1",
				PolicyGroups: []models.PolicyGroup{
					{FieldName: "CVSS", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: ">=7"}}},
				},
			},
		},
	}
}

func findChange(changes []Change, msg string) *Change {
	for i := range changes {
		if changes[i].Message == msg {
			return &changes[i]
		}
	}
	return nil
}

func TestCompare_NoChange(t *testing.T) {
	result, err := NewEngine().Compare(basePolicy(), basePolicy())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.HasChanges || len(result.Patches) != 0 {
		t.Errorf("expected no changes, got %+v", result.Changes)
	}
	if result.MaxSeverity() != SeveritySafe {
		t.Errorf("MaxSeverity = %d", result.MaxSeverity())
	}
}

func TestCompare_Translations(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *models.ServerPolicy)
		message  string
		diffType DiffType
		severity SeverityLevel
	}{
		{
			name:     "criterion value",
			mutate:   func(p *models.ServerPolicy) { p.PolicySections[0].PolicyGroups[0].Values[0].Value = ">=9" },
			message:  "Criterion 'CVSS' in section 'Section 1' value changed.",
			diffType: DiffTypeChanged,
			severity: SeverityCritical,
		},
		{
			name:     "negate",
			mutate:   func(p *models.ServerPolicy) { p.PolicySections[0].PolicyGroups[0].Negate = true },
			message:  "Criterion 'CVSS' in section 'Section 1' negation changed.",
			diffType: DiffTypeChanged,
			severity: SeverityCritical,
		},
		{
			name: "criterion added",
			mutate: func(p *models.ServerPolicy) {
				p.PolicySections[0].PolicyGroups = append(p.PolicySections[0].PolicyGroups,
					models.PolicyGroup{FieldName: "Image Tag", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: "latest"}}})
			},
			message:  "Criterion 'Image Tag' in section 'Section 1' added.",
			diffType: DiffTypeAdded,
			severity: SeverityCritical,
		},
		{
			name:     "section renamed",
			mutate:   func(p *models.ServerPolicy) { p.PolicySections[0].SectionName = "Renamed" },
			message:  "Policy section 'Section 1' renamed.",
			diffType: DiffTypeChanged,
			severity: SeverityCritical,
		},
		{
			name:     "disabled",
			mutate:   func(p *models.ServerPolicy) { p.Disabled = true },
			message:  "Policy enabled state changed.",
			diffType: DiffTypeChanged,
			severity: SeverityCritical,
		},
		{
			name:     "event source",
			mutate:   func(p *models.ServerPolicy) { p.EventSource = models.EventSourceDeployment },
			message:  "Event source changed.",
			diffType: DiffTypeChanged,
			severity: SeverityCritical,
		},
		{
			name:     "notifier added",
			mutate:   func(p *models.ServerPolicy) { p.Notifiers = []string{"slack"} },
			message:  "Notifiers added.",
			diffType: DiffTypeAdded,
			severity: SeverityModerate,
		},
		{
			name:     "severity",
			mutate:   func(p *models.ServerPolicy) { p.Severity = models.SeverityLow },
			message:  "Severity changed.",
			diffType: DiffTypeChanged,
			severity: SeverityModerate,
		},
		{
			name:     "description",
			mutate:   func(p *models.ServerPolicy) { p.Description = "new" },
			message:  "Documentation update: description changed.",
			diffType: DiffTypeChanged,
			severity: SeveritySafe,
		},
		{
			name:     "metadata",
			mutate:   func(p *models.ServerPolicy) { p.LastUpdated = "2024-02-01T00:00:00Z" },
			message:  "Metadata 'lastUpdated' changed.",
			diffType: DiffTypeChanged,
			severity: SeveritySafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := basePolicy()
			tt.mutate(after)

			result, err := NewEngine().Compare(basePolicy(), after)
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			if !result.HasChanges {
				t.Fatal("expected changes")
			}
			c := findChange(result.Changes, tt.message)
			if c == nil {
				t.Fatalf("missing %q in %+v", tt.message, result.Changes)
			}
			if c.DiffType != tt.diffType {
				t.Errorf("DiffType = %q, want %q", c.DiffType, tt.diffType)
			}
			if c.Severity != tt.severity {
				t.Errorf("Severity = %s, want %s", SeverityString(c.Severity), SeverityString(tt.severity))
			}
			if result.MaxSeverity() != tt.severity {
				t.Errorf("MaxSeverity = %s, want %s", SeverityString(result.MaxSeverity()), SeverityString(tt.severity))
			}
		})
	}
}

func TestCompare_CriterionRemoved(t *testing.T) {
	before := basePolicy()
	before.PolicySections[0].PolicyGroups = append(before.PolicySections[0].PolicyGroups,
		models.PolicyGroup{FieldName: "Image Tag", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: "latest"}}})

	result, err := NewEngine().Compare(before, basePolicy())
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	c := findChange(result.Changes, "Criterion 'Image Tag' in section 'Section 1' removed.")
	if c == nil {
		t.Fatalf("missing removal in %+v", result.Changes)
	}
	if c.DiffType != DiffTypeRemoved || c.Severity != SeverityCritical {
		t.Errorf("change = %+v", c)
	}
}

func TestCompare_Equivalent(t *testing.T) {
	reordered := basePolicy()
	reordered.Exclusions[0], reordered.Exclusions[1] = reordered.Exclusions[1], reordered.Exclusions[0]

	strict, err := NewEngine().Compare(basePolicy(), reordered)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if findChange(strict.Changes, "Exclusions changed.") == nil {
		t.Errorf("strict compare should report exclusions, got %+v", strict.Changes)
	}

	loose, err := NewEngine(Equivalent()).Compare(basePolicy(), reordered)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if loose.HasChanges {
		t.Errorf("equivalent compare should ignore order, got %+v", loose.Changes)
	}
}

func TestCompare_Ignore(t *testing.T) {
	after := basePolicy()
	after.LastUpdated = "2025-01-01T00:00:00Z"

	result, err := NewEngine(Ignore("/lastUpdated")).Compare(basePolicy(), after)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.HasChanges {
		t.Errorf("expected ignored change, got %+v", result.Changes)
	}
}

func TestCompare_DeduplicatesMessages(t *testing.T) {
	after := basePolicy()
	after.PolicySections[0].PolicyGroups[0].Values = []models.PolicyValue{{Value: ">=8"}, {Value: ">=9"}}

	result, err := NewEngine().Compare(basePolicy(), after)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	n := 0
	for _, c := range result.Changes {
		if c.Message == "Criterion 'CVSS' in section 'Section 1' value changed." {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected one value-changed message, got %d in %+v", n, result.Changes)
	}
}

func TestCompare_SameFieldInTwoSections(t *testing.T) {
	twoSections := func(first, second string) *models.ServerPolicy {
		p := basePolicy()
		p.PolicySections = []models.PolicySection{
			{SectionName: "S1", PolicyGroups: []models.PolicyGroup{
				{FieldName: "CVSS", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: first}}},
			}},
			{SectionName: "S2", PolicyGroups: []models.PolicyGroup{
				{FieldName: "CVSS", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: second}}},
			}},
		}
		return p
	}

	result, err := NewEngine().Compare(twoSections(">=7", ">=5"), twoSections(">=8", ">=6"))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(result.Patches) != 2 || len(result.Changes) != 2 {
		t.Fatalf("patches=%d changes=%d: %+v", len(result.Patches), len(result.Changes), result.Changes)
	}
	for _, msg := range []string{
		"Criterion 'CVSS' in section 'S1' value changed.",
		"Criterion 'CVSS' in section 'S2' value changed.",
	} {
		if findChange(result.Changes, msg) == nil {
			t.Errorf("missing %q in %+v", msg, result.Changes)
		}
	}
}

func TestCompare_SameFieldTwiceInOneSection(t *testing.T) {
	before := basePolicy()
	before.PolicySections[0].PolicyGroups = append(before.PolicySections[0].PolicyGroups,
		models.PolicyGroup{FieldName: "CVSS", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: "<=9"}}})
	after := basePolicy()
	after.PolicySections[0].PolicyGroups[0].Values[0].Value = ">=8"
	after.PolicySections[0].PolicyGroups = append(after.PolicySections[0].PolicyGroups,
		models.PolicyGroup{FieldName: "CVSS", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: "<=10"}}})

	result, err := NewEngine().Compare(before, after)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(result.Changes) != 2 {
		t.Errorf("expected a change per group, got %+v", result.Changes)
	}
	for _, c := range result.Changes {
		if c.Message != "Criterion 'CVSS' in section 'Section 1' value changed." {
			t.Errorf("unexpected change %+v", c)
		}
	}
}

func TestSplitPointer(t *testing.T) {
	got := splitPointer("/a~1b/c~0d/0")
	want := []string{"a/b", "c~d", "0"}
	if len(got) != len(want) {
		t.Fatalf("splitPointer = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
	if splitPointer("") != nil {
		t.Error("root pointer should have no tokens")
	}
}
