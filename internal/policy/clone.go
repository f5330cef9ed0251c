package policy

import "github.com/policykit/policyconv/internal/models"

// orEmpty copies s, never returning nil
func orEmpty[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneScopePtr(s *models.Scope) *models.Scope {
	if s == nil {
		return nil
	}
	c := cloneScope(*s)
	return &c
}

func cloneScope(s models.Scope) models.Scope {
	if s.Label != nil {
		label := *s.Label
		s.Label = &label
	}
	return s
}

func cloneScopes(scopes []models.Scope) []models.Scope {
	out := make([]models.Scope, len(scopes))
	for i, s := range scopes {
		out[i] = cloneScope(s)
	}
	return out
}

func cloneDeployments(ds []models.DeploymentExclusion) []models.DeploymentExclusion {
	out := make([]models.DeploymentExclusion, len(ds))
	for i, d := range ds {
		out[i] = models.DeploymentExclusion{Name: d.Name, Scope: cloneScopePtr(d.Scope)}
	}
	return out
}

func clonePolicyFields(f models.PolicyFields) models.PolicyFields {
	f.Categories = orEmpty(f.Categories)
	f.LifecycleStages = orEmpty(f.LifecycleStages)
	f.Scope = cloneScopes(f.Scope)
	f.EnforcementActions = orEmpty(f.EnforcementActions)
	f.Notifiers = orEmpty(f.Notifiers)
	vectors := make([]models.MitreAttackVector, len(f.MitreAttackVectors))
	for i, v := range f.MitreAttackVectors {
		vectors[i] = models.MitreAttackVector{Tactic: v.Tactic, Techniques: orEmpty(v.Techniques)}
	}
	f.MitreAttackVectors = vectors
	return f
}

func cloneSections(sections []models.PolicySection) []models.PolicySection {
	out := make([]models.PolicySection, len(sections))
	for i, s := range sections {
		groups := make([]models.PolicyGroup, len(s.PolicyGroups))
		for j, g := range s.PolicyGroups {
			g.Values = orEmpty(g.Values)
			groups[j] = g
		}
		out[i] = models.PolicySection{SectionName: s.SectionName, PolicyGroups: groups}
	}
	return out
}

func cloneValues(values []models.ValueObj) []models.ValueObj {
	out := make([]models.ValueObj, len(values))
	for i, v := range values {
		if v.IsArray {
			out[i] = models.ArrayValue(v.ArrayValue)
			continue
		}
		c := models.ValueObj{Value: v.Value}
		if v.Key != nil {
			k := *v.Key
			c.Key = &k
		}
		if v.Source != nil {
			s := *v.Source
			c.Source = &s
		}
		out[i] = c
	}
	return out
}

func cloneClientSections(sections []models.ClientPolicySection) []models.ClientPolicySection {
	out := make([]models.ClientPolicySection, len(sections))
	for i, s := range sections {
		groups := make([]models.ClientPolicyGroup, len(s.PolicyGroups))
		for j, g := range s.PolicyGroups {
			g.Values = cloneValues(g.Values)
			groups[j] = g
		}
		out[i] = models.ClientPolicySection{SectionName: s.SectionName, PolicyGroups: groups}
	}
	return out
}

// CloneClientPolicy deep copy
func CloneClientPolicy(p *models.ClientPolicy) *models.ClientPolicy {
	if p == nil {
		return nil
	}
	c := *p
	c.PolicyFields = clonePolicyFields(p.PolicyFields)
	c.PolicySections = cloneClientSections(p.PolicySections)
	c.ServerPolicySections = cloneSections(p.ServerPolicySections)
	c.ExcludedImageNames = orEmpty(p.ExcludedImageNames)
	c.ExcludedDeploymentScopes = cloneDeployments(p.ExcludedDeploymentScopes)
	return &c
}

// NormalizeServerPolicy deep copies p with every nil list replaced by an
// empty one, the shape ToServer produces
func NormalizeServerPolicy(p *models.ServerPolicy) *models.ServerPolicy {
	if p == nil {
		return nil
	}
	exclusions := make([]models.Exclusion, len(p.Exclusions))
	for i, e := range p.Exclusions {
		c := models.Exclusion{Name: e.Name, Expiration: e.Expiration}
		if e.Deployment != nil {
			c.Deployment = &models.DeploymentExclusion{Name: e.Deployment.Name, Scope: cloneScopePtr(e.Deployment.Scope)}
		}
		if e.Image != nil {
			img := *e.Image
			c.Image = &img
		}
		exclusions[i] = c
	}
	return &models.ServerPolicy{
		PolicyFields:   clonePolicyFields(p.PolicyFields),
		Exclusions:     exclusions,
		PolicySections: cloneSections(p.PolicySections),
	}
}
