package policy

import (
	"slices"

	"github.com/policykit/policyconv/internal/models"
)

// enforcement actions that only apply while a stage is selected
var stageEnforcement = map[models.LifecycleStage][]models.EnforcementAction{
	models.LifecycleBuild: {
		models.EnforcementFailBuild,
	},
	models.LifecycleDeploy: {
		models.EnforcementScaleToZero,
		models.EnforcementUnsatisfiableNodeConstraint,
		models.EnforcementFailDeploymentCreate,
		models.EnforcementFailDeploymentUpdate,
	},
	models.LifecycleRuntime: {
		models.EnforcementKillPod,
		models.EnforcementFailKubeRequest,
	},
}

// LifecycleChanges are the form fields affected by toggling a stage
type LifecycleChanges struct {
	LifecycleStages    []models.LifecycleStage
	EventSource        models.EventSource
	EnforcementActions []models.EnforcementAction
	ExcludedImageNames []string
}

// GetLifeCyclesUpdates computes the fields to change when stage is checked
// or unchecked in the form. values is not modified.
func GetLifeCyclesUpdates(values *models.ClientPolicy, stage models.LifecycleStage, checked bool) LifecycleChanges {
	selected := map[models.LifecycleStage]bool{}
	for _, s := range values.LifecycleStages {
		selected[s] = true
	}
	selected[stage] = checked

	// canonical order, unknown stages kept at the end
	stages := make([]models.LifecycleStage, 0, len(selected))
	for _, s := range models.LifecycleStages {
		if selected[s] {
			stages = append(stages, s)
		}
	}
	for _, s := range values.LifecycleStages {
		if selected[s] && !slices.Contains(models.LifecycleStages, s) && !slices.Contains(stages, s) {
			stages = append(stages, s)
		}
	}

	changes := LifecycleChanges{
		LifecycleStages:    stages,
		EventSource:        values.EventSource,
		EnforcementActions: orEmpty(values.EnforcementActions),
		ExcludedImageNames: orEmpty(values.ExcludedImageNames),
	}

	if !selected[models.LifecycleRuntime] {
		changes.EventSource = models.EventSourceNotApplicable
	} else if changes.EventSource == "" || changes.EventSource == models.EventSourceNotApplicable {
		changes.EventSource = models.EventSourceDeployment
	}

	if !selected[models.LifecycleBuild] {
		changes.ExcludedImageNames = []string{}
	}

	for s, actions := range stageEnforcement {
		if selected[s] {
			continue
		}
		changes.EnforcementActions = slices.DeleteFunc(changes.EnforcementActions, func(a models.EnforcementAction) bool {
			return slices.Contains(actions, a)
		})
	}
	return changes
}

// Apply writes the changes into p
func (c LifecycleChanges) Apply(p *models.ClientPolicy) {
	p.LifecycleStages = orEmpty(c.LifecycleStages)
	p.EventSource = c.EventSource
	p.EnforcementActions = orEmpty(c.EnforcementActions)
	p.ExcludedImageNames = orEmpty(c.ExcludedImageNames)
	setSortHelpers(p)
}
