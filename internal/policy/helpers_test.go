package policy

import (
	"context"
	"sync"

	"github.com/policykit/policyconv/internal/models"
)

type logEntry struct {
	level   string
	message string
	fields  []any
}

// recordingLogger captures log calls
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordingLogger) add(level, msg string, fields []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: level, message: msg, fields: fields})
}

func (r *recordingLogger) Debug(component, msg string, fields ...any) { r.add("debug", msg, fields) }
func (r *recordingLogger) Info(component, msg string, fields ...any)  { r.add("info", msg, fields) }
func (r *recordingLogger) Warn(component, msg string, fields ...any)  { r.add("warn", msg, fields) }
func (r *recordingLogger) Error(component, msg string, fields ...any) { r.add("error", msg, fields) }
func (r *recordingLogger) Event(ctx context.Context, event string, fields map[string]any) {
	r.add("event", event, nil)
}
func (r *recordingLogger) Close() error { return nil }

func (r *recordingLogger) count(level string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func sampleServerPolicy() *models.ServerPolicy {
	return &models.ServerPolicy{
		PolicyFields: models.PolicyFields{
			ID:                 "6f1f4f2c-policy",
			Name:               "Privileged Container With Secrets",
			Description:        "Alert on privileged containers with secrets in env",
			Rationale:          "Privileged containers can escape",
			Remediation:        "Drop privileges",
			Categories:         []string{"Privileges", "Security Best Practices"},
			LifecycleStages:    []models.LifecycleStage{models.LifecycleBuild, models.LifecycleDeploy},
			EventSource:        models.EventSourceNotApplicable,
			Scope:              []models.Scope{{Cluster: "prod", Namespace: "payments"}},
			Severity:           models.SeverityHigh,
			EnforcementActions: []models.EnforcementAction{models.EnforcementScaleToZero},
			Notifiers:          []string{"slack-1"},
			LastUpdated:        "2024-03-01T10:00:00Z",
			PolicyVersion:      "1.1",
			MitreAttackVectors: []models.MitreAttackVector{{Tactic: "TA0004", Techniques: []string{"T1611"}}},
			IsDefault:          true,
		},
		Exclusions: []models.Exclusion{
			{Deployment: &models.DeploymentExclusion{
				Name:  "kube-proxy",
				Scope: &models.Scope{Namespace: "kube-system", Label: &models.ScopeLabel{Key: "app", Value: "proxy"}},
			}},
			{Image: &models.ImageExclusion{Name: "docker.io/library/nginx"}},
		},
		PolicySections: []models.PolicySection{
			{
				SectionName: "Section 1",
				PolicyGroups: []models.PolicyGroup{
					{FieldName: "CVSS", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: ">=7"}}},
					{FieldName: "Environment Variable", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: "RAW=AWS_SECRET=abc"}}},
					{FieldName: "Required Label", BooleanOperator: models.OperatorAnd, Negate: true, Values: []models.PolicyValue{{Value: "owner=team-a"}}},
					{FieldName: "Image Signature Verified By", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: "sig-a"}, {Value: "sig-b"}}},
					{FieldName: "Image Tag", BooleanOperator: models.OperatorOr, Values: []models.PolicyValue{{Value: "latest"}}},
				},
			},
		},
	}
}
