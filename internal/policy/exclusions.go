package policy

import "github.com/policykit/policyconv/internal/models"

// GetExcludedDeployments keeps deployment exclusions that name a deployment
// or carry a scope
func GetExcludedDeployments(exclusions []models.Exclusion) []models.DeploymentExclusion {
	out := make([]models.DeploymentExclusion, 0, len(exclusions))
	for _, e := range exclusions {
		d := e.Deployment
		if d == nil || (d.Name == "" && d.Scope == nil) {
			continue
		}
		out = append(out, models.DeploymentExclusion{Name: d.Name, Scope: cloneScopePtr(d.Scope)})
	}
	return out
}

// GetExcludedImageNames keeps non-empty image exclusion names
func GetExcludedImageNames(exclusions []models.Exclusion) []string {
	out := make([]string, 0, len(exclusions))
	for _, e := range exclusions {
		if e.Image == nil || e.Image.Name == "" {
			continue
		}
		out = append(out, e.Image.Name)
	}
	return out
}

// GetServerPolicyExclusions merges the form lists back into wire
// exclusions. Deployment exclusions always precede image exclusions.
func GetServerPolicyExclusions(deployments []models.DeploymentExclusion, imageNames []string) []models.Exclusion {
	out := make([]models.Exclusion, 0, len(deployments)+len(imageNames))
	for _, d := range deployments {
		out = append(out, models.Exclusion{
			Deployment: &models.DeploymentExclusion{Name: d.Name, Scope: cloneScopePtr(d.Scope)},
		})
	}
	for _, name := range imageNames {
		out = append(out, models.Exclusion{
			Image: &models.ImageExclusion{Name: name},
		})
	}
	return out
}

// malformedExclusions returns indexes of entries that set both kinds or
// neither
func malformedExclusions(exclusions []models.Exclusion) []int {
	var bad []int
	for i, e := range exclusions {
		if (e.Deployment == nil) == (e.Image == nil) {
			bad = append(bad, i)
		}
	}
	return bad
}
