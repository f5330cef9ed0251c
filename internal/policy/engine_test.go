package policy

import (
	"context"
	"strings"
	"testing"

	"github.com/policykit/policyconv/internal/models"
)

func failedRules(results []models.ValidationResult) map[string]models.ValidationResult {
	failed := map[string]models.ValidationResult{}
	for _, r := range results {
		if !r.Passed {
			failed[r.RuleName] = r
		}
	}
	return failed
}

func evaluatePreset(t *testing.T, preset string, p *models.ClientPolicy) []models.ValidationResult {
	t.Helper()
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	rules := MustGetPreset(preset)
	if err := engine.CompileAndValidate(rules); err != nil {
		t.Fatalf("preset %q does not compile: %v", preset, err)
	}
	results, err := engine.Evaluate(rules, p)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(results) != len(rules.Rules) {
		t.Fatalf("got %d results for %d rules", len(results), len(rules.Rules))
	}
	return results
}

func TestEngine_WizardAcceptsLoadedPolicy(t *testing.T) {
	client := GetClientWizardPolicy(context.Background(), sampleServerPolicy())

	results := evaluatePreset(t, "wizard", client)
	if failed := failedRules(results); len(failed) != 0 {
		t.Errorf("unexpected failures: %+v", failed)
	}
	if HasErrors(results) {
		t.Error("HasErrors should be false")
	}
}

func TestEngine_WizardRejectsEmptyTemplate(t *testing.T) {
	results := evaluatePreset(t, "wizard", NewClientPolicy())
	failed := failedRules(results)

	for _, name := range []string{"name_required", "lifecycle_stage_required", "section_has_criteria"} {
		r, ok := failed[name]
		if !ok {
			t.Errorf("expected %s to fail", name)
			continue
		}
		if r.Severity != models.RuleSeverityError {
			t.Errorf("%s severity = %q", name, r.Severity)
		}
		if r.FailureMsg == "" {
			t.Errorf("%s has no failure message", name)
		}
	}
	if _, ok := failed["severity_required"]; ok {
		t.Error("template severity should be accepted")
	}
	if !HasErrors(results) {
		t.Error("HasErrors should be true")
	}
}

func TestEngine_WizardLifecycleRules(t *testing.T) {
	client := GetClientWizardPolicy(context.Background(), sampleServerPolicy())

	tests := []struct {
		name     string
		mutate   func(p *models.ClientPolicy)
		wantFail string
	}{
		{
			name: "runtime without event source",
			mutate: func(p *models.ClientPolicy) {
				p.LifecycleStages = append(p.LifecycleStages, models.LifecycleRuntime)
				p.EventSource = models.EventSourceNotApplicable
			},
			wantFail: "runtime_event_source",
		},
		{
			name: "audit log with deploy",
			mutate: func(p *models.ClientPolicy) {
				p.LifecycleStages = []models.LifecycleStage{models.LifecycleDeploy, models.LifecycleRuntime}
				p.EventSource = models.EventSourceAuditLog
				p.ExcludedImageNames = []string{}
			},
			wantFail: "audit_log_runtime_only",
		},
		{
			name: "image exclusions without build",
			mutate: func(p *models.ClientPolicy) {
				p.LifecycleStages = []models.LifecycleStage{models.LifecycleDeploy}
			},
			wantFail: "image_exclusions_need_build",
		},
		{
			name: "unparseable comparison",
			mutate: func(p *models.ClientPolicy) {
				p.PolicySections[0].PolicyGroups[0].Values[0] = models.KeyValue("=", "high")
			},
			wantFail: "criterion_values_parse",
		},
		{
			name: "criterion without values",
			mutate: func(p *models.ClientPolicy) {
				p.PolicySections[0].PolicyGroups[4].Values = []models.ValueObj{}
			},
			wantFail: "criterion_has_value",
		},
		{
			name: "excluded deployment without name or scope",
			mutate: func(p *models.ClientPolicy) {
				p.ExcludedDeploymentScopes = append(p.ExcludedDeploymentScopes, models.DeploymentExclusion{Name: "  "})
			},
			wantFail: "excluded_deployment_named_or_scoped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CloneClientPolicy(client)
			tt.mutate(p)

			failed := failedRules(evaluatePreset(t, "wizard", p))
			if _, ok := failed[tt.wantFail]; !ok {
				t.Errorf("expected %s to fail, failures: %+v", tt.wantFail, failed)
			}
			if len(failed) != 1 {
				t.Errorf("expected exactly one failure, got %+v", failed)
			}
		})
	}
}

func TestEngine_Lint(t *testing.T) {
	client := GetClientWizardPolicy(context.Background(), sampleServerPolicy())

	if failed := failedRules(evaluatePreset(t, "lint", client)); len(failed) != 0 {
		t.Errorf("unexpected lint failures: %+v", failed)
	}

	client.ExcludedImageNames = append(client.ExcludedImageNames, "Not A Valid:Image::")
	client.Name = " padded "
	client.EnforcementActions = []models.EnforcementAction{}

	results := evaluatePreset(t, "lint", client)
	failed := failedRules(results)
	for _, name := range []string{"excluded_images_parse", "untrimmed_name", "enforcement_configured"} {
		if r, ok := failed[name]; !ok {
			t.Errorf("expected %s to fail", name)
		} else if r.Severity != models.RuleSeverityWarn {
			t.Errorf("%s severity = %q, want warn", name, r.Severity)
		}
	}
	if HasErrors(results) {
		t.Error("lint warnings must not count as errors")
	}
}

func TestEngine_DisabledPolicyNeedsNoEnforcement(t *testing.T) {
	client := GetClientWizardPolicy(context.Background(), sampleServerPolicy())
	client.EnforcementActions = []models.EnforcementAction{}
	client.Disabled = true

	if _, ok := failedRules(evaluatePreset(t, "lint", client))["enforcement_configured"]; ok {
		t.Error("disabled policy should not need enforcement")
	}
}

func TestEngine_BadExpressionIsAFailedResult(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	rules := &models.ValidationRuleSet{
		Name: "broken",
		Rules: []models.ValidationRule{
			{Name: "syntax", Expr: "input.name ==", FailureMsg: "x"},
			{Name: "not_bool", Expr: "input.name", FailureMsg: "x"},
			{Name: "missing_key", Expr: "input.nope == 1", FailureMsg: "x"},
		},
	}

	results, err := engine.Evaluate(rules, NewClientPolicy())
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	wantPrefix := map[string]string{
		"syntax":      "CEL compile error",
		"not_bool":    "Rule expression must return boolean",
		"missing_key": "CEL evaluation error",
	}
	for _, r := range results {
		if r.Passed {
			t.Errorf("%s should fail", r.RuleName)
		}
		if !strings.HasPrefix(r.FailureMsg, wantPrefix[r.RuleName]) {
			t.Errorf("%s message = %q, want prefix %q", r.RuleName, r.FailureMsg, wantPrefix[r.RuleName])
		}
	}
}

func TestEngine_CompileAndValidate(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	err = engine.CompileAndValidate(&models.ValidationRuleSet{
		Rules: []models.ValidationRule{
			{Name: "ok", Expr: "true"},
			{Name: "bad_expr", Expr: "(("},
			{Name: "bad_severity", Expr: "true", Severity: "fatal"},
		},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"bad_expr", "bad_severity"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
	if strings.Contains(err.Error(), `"ok"`) {
		t.Errorf("error mentions valid rule: %v", err)
	}
}
