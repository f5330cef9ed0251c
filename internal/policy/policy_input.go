package policy

import "github.com/policykit/policyconv/internal/models"

// clientPolicyToMap converts the form for CEL. Collections are never nil so
// rules can call size() and the list macros without guarding.
func clientPolicyToMap(p *models.ClientPolicy, codec *Codec) map[string]interface{} {
	sections := make([]interface{}, len(p.PolicySections))
	for i, s := range p.PolicySections {
		sections[i] = sectionToMap(s, codec)
	}

	deployments := make([]interface{}, len(p.ExcludedDeploymentScopes))
	for i, d := range p.ExcludedDeploymentScopes {
		deployments[i] = map[string]interface{}{
			"name":     d.Name,
			"hasScope": d.Scope != nil,
		}
	}

	stages := make([]interface{}, len(p.LifecycleStages))
	for i, s := range p.LifecycleStages {
		stages[i] = string(s)
	}

	actions := make([]interface{}, len(p.EnforcementActions))
	for i, a := range p.EnforcementActions {
		actions[i] = string(a)
	}

	return map[string]interface{}{
		"id":                       p.ID,
		"name":                     p.Name,
		"description":              p.Description,
		"rationale":                p.Rationale,
		"remediation":              p.Remediation,
		"disabled":                 p.Disabled,
		"severity":                 string(p.Severity),
		"eventSource":              string(p.EventSource),
		"categories":               stringSliceToInterface(p.Categories),
		"lifecycleStages":          stages,
		"enforcementActions":       actions,
		"notifiers":                stringSliceToInterface(p.Notifiers),
		"excludedImageNames":       stringSliceToInterface(p.ExcludedImageNames),
		"excludedDeploymentScopes": deployments,
		"policySections":           sections,
		"criteriaLocked":           p.CriteriaLocked,
		"isDefault":                p.IsDefault,
	}
}

// sectionToMap includes the wire encoding of every value as rawValues
func sectionToMap(s models.ClientPolicySection, codec *Codec) map[string]interface{} {
	groups := make([]interface{}, len(s.PolicyGroups))
	for i, g := range s.PolicyGroups {
		raw := codec.EncodeValues(g.FieldName, g.Values)
		rawValues := make([]interface{}, len(raw))
		for j, v := range raw {
			rawValues[j] = v.Value
		}
		groups[i] = map[string]interface{}{
			"fieldName":       g.FieldName,
			"booleanOperator": string(g.BooleanOperator),
			"negate":          g.Negate,
			"rawValues":       rawValues,
		}
	}
	return map[string]interface{}{
		"sectionName":  s.SectionName,
		"policyGroups": groups,
	}
}

// stringSliceToInterface
func stringSliceToInterface(s []string) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = v
	}
	return result
}
