package policy

import (
	"strings"

	"github.com/policykit/policyconv/internal/models"
)

// TrimClientPolicy returns a copy with free-text fields trimmed, ready for
// submit. Criterion values are left as typed.
func TrimClientPolicy(p *models.ClientPolicy) *models.ClientPolicy {
	if p == nil {
		return nil
	}
	t := CloneClientPolicy(p)

	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	t.Rationale = strings.TrimSpace(t.Rationale)
	t.Remediation = strings.TrimSpace(t.Remediation)

	for i := range t.PolicySections {
		t.PolicySections[i].SectionName = strings.TrimSpace(t.PolicySections[i].SectionName)
	}
	for i := range t.Scope {
		trimScope(&t.Scope[i])
	}
	for i := range t.ExcludedDeploymentScopes {
		d := &t.ExcludedDeploymentScopes[i]
		d.Name = strings.TrimSpace(d.Name)
		if d.Scope != nil {
			trimScope(d.Scope)
		}
	}
	for i := range t.ExcludedImageNames {
		t.ExcludedImageNames[i] = strings.TrimSpace(t.ExcludedImageNames[i])
	}
	return t
}

func trimScope(s *models.Scope) {
	s.Cluster = strings.TrimSpace(s.Cluster)
	s.Namespace = strings.TrimSpace(s.Namespace)
}
