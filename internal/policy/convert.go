// Package policy converts policies between the wire shape stored by the
// backend and the form shape edited in the policy wizard, and validates the
// form with CEL rule sets.
package policy

import (
	"context"
	"strings"

	"github.com/policykit/policyconv/internal/criteria"
	"github.com/policykit/policyconv/internal/models"
	"github.com/policykit/policyconv/internal/observability/logging"
)

const component = "converter"

// Converter maps ServerPolicy <-> ClientPolicy
type Converter struct {
	codec *Codec
}

// NewConverter for table; nil selects the embedded table
func NewConverter(table *criteria.Table) *Converter {
	return &Converter{codec: NewCodec(table)}
}

var defaultConverter = NewConverter(nil)

// GetClientWizardPolicy converts with the embedded field table
func GetClientWizardPolicy(ctx context.Context, p *models.ServerPolicy) *models.ClientPolicy {
	return defaultConverter.ToClient(ctx, p)
}

// GetServerPolicy converts with the embedded field table
func GetServerPolicy(ctx context.Context, p *models.ClientPolicy) *models.ServerPolicy {
	return defaultConverter.ToServer(ctx, p)
}

// ToClient builds the form document. Data-integrity problems are logged as
// warnings and never stop the conversion.
func (c *Converter) ToClient(ctx context.Context, p *models.ServerPolicy) *models.ClientPolicy {
	if p == nil {
		return nil
	}
	log := logging.From(ctx)

	for _, idx := range malformedExclusions(p.Exclusions) {
		log.Warn(component, "exclusion must set exactly one of deployment or image",
			"policy_id", p.ID, "index", idx)
	}

	sections := make([]models.ClientPolicySection, len(p.PolicySections))
	for i, s := range p.PolicySections {
		groups := make([]models.ClientPolicyGroup, len(s.PolicyGroups))
		for j, g := range s.PolicyGroups {
			values, errs := c.codec.DecodeValues(g.FieldName, g.Values)
			for _, err := range errs {
				log.Warn(component, "criterion value kept verbatim",
					"policy_id", p.ID, "section", i, "group", j, "error", err.Error())
			}
			groups[j] = models.ClientPolicyGroup{
				FieldName:       g.FieldName,
				BooleanOperator: g.BooleanOperator,
				Negate:          g.Negate,
				Values:          values,
			}
		}
		sections[i] = models.ClientPolicySection{SectionName: s.SectionName, PolicyGroups: groups}
	}

	client := &models.ClientPolicy{
		PolicyFields:             clonePolicyFields(p.PolicyFields),
		PolicySections:           sections,
		ServerPolicySections:     cloneSections(p.PolicySections),
		ExcludedImageNames:       GetExcludedImageNames(p.Exclusions),
		ExcludedDeploymentScopes: GetExcludedDeployments(p.Exclusions),
	}
	setSortHelpers(client)

	log.Debug(component, "converted to client policy", "policy_id", p.ID,
		"sections", len(sections), "exclusions", len(p.Exclusions))
	return client
}

// ToServer builds the wire document. Groups the user did not touch are
// emitted from the serverPolicySections snapshot so raw strings that do not
// re-encode byte for byte survive.
func (c *Converter) ToServer(ctx context.Context, p *models.ClientPolicy) *models.ServerPolicy {
	if p == nil {
		return nil
	}
	log := logging.From(ctx)

	var sections []models.PolicySection
	if p.CriteriaLocked && p.ServerPolicySections != nil {
		log.Debug(component, "criteria locked, using server sections", "policy_id", p.ID)
		sections = cloneSections(p.ServerPolicySections)
	} else {
		sections = c.encodeSections(p.PolicySections, p.ServerPolicySections)
	}

	return &models.ServerPolicy{
		PolicyFields:   clonePolicyFields(p.PolicyFields),
		Exclusions:     GetServerPolicyExclusions(p.ExcludedDeploymentScopes, p.ExcludedImageNames),
		PolicySections: sections,
	}
}

func (c *Converter) encodeSections(sections []models.ClientPolicySection, snapshot []models.PolicySection) []models.PolicySection {
	out := make([]models.PolicySection, len(sections))
	for i, s := range sections {
		groups := make([]models.PolicyGroup, len(s.PolicyGroups))
		for j, g := range s.PolicyGroups {
			values := c.unchangedValues(g, snapshotGroup(snapshot, i, j))
			if values == nil {
				values = c.codec.EncodeValues(g.FieldName, g.Values)
			}
			groups[j] = models.PolicyGroup{
				FieldName:       g.FieldName,
				BooleanOperator: g.BooleanOperator,
				Negate:          g.Negate,
				Values:          values,
			}
		}
		out[i] = models.PolicySection{SectionName: s.SectionName, PolicyGroups: groups}
	}
	return out
}

// unchangedValues returns the snapshot values when they decode to exactly
// the group's current values, otherwise nil
func (c *Converter) unchangedValues(g models.ClientPolicyGroup, snap *models.PolicyGroup) []models.PolicyValue {
	if snap == nil || snap.FieldName != g.FieldName {
		return nil
	}
	decoded, _ := c.codec.DecodeValues(snap.FieldName, snap.Values)
	if len(decoded) != len(g.Values) {
		return nil
	}
	for k := range decoded {
		if !decoded[k].Equal(g.Values[k]) {
			return nil
		}
	}
	return orEmpty(snap.Values)
}

func snapshotGroup(snapshot []models.PolicySection, section, group int) *models.PolicyGroup {
	if section >= len(snapshot) || group >= len(snapshot[section].PolicyGroups) {
		return nil
	}
	return &snapshot[section].PolicyGroups[group]
}

var stageLabels = map[models.LifecycleStage]string{
	models.LifecycleBuild:   "Build",
	models.LifecycleDeploy:  "Deploy",
	models.LifecycleRuntime: "Runtime",
}

func setSortHelpers(p *models.ClientPolicy) {
	p.SORTName = p.Name

	labels := make([]string, 0, len(p.LifecycleStages))
	for _, stage := range p.LifecycleStages {
		if label, ok := stageLabels[stage]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, string(stage))
		}
	}
	p.SORTLifecycleStage = strings.Join(labels, ", ")

	p.SORTEnforcement = false
	for _, a := range p.EnforcementActions {
		if a != models.EnforcementUnset {
			p.SORTEnforcement = true
			break
		}
	}
}

// NewClientPolicy returns the create-wizard template
func NewClientPolicy() *models.ClientPolicy {
	p := &models.ClientPolicy{
		PolicyFields: models.PolicyFields{
			Severity:           models.SeverityLow,
			Categories:         []string{},
			LifecycleStages:    []models.LifecycleStage{},
			EventSource:        models.EventSourceNotApplicable,
			Scope:              []models.Scope{},
			EnforcementActions: []models.EnforcementAction{},
			Notifiers:          []string{},
			MitreAttackVectors: []models.MitreAttackVector{},
		},
		PolicySections: []models.ClientPolicySection{
			{SectionName: "Policy Section 1", PolicyGroups: []models.ClientPolicyGroup{}},
		},
		ServerPolicySections:     []models.PolicySection{},
		ExcludedImageNames:       []string{},
		ExcludedDeploymentScopes: []models.DeploymentExclusion{},
	}
	setSortHelpers(p)
	return p
}
