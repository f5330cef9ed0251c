package models

// LifecycleStage of a policy
type LifecycleStage string

const (
	LifecycleBuild   LifecycleStage = "BUILD"
	LifecycleDeploy  LifecycleStage = "DEPLOY"
	LifecycleRuntime LifecycleStage = "RUNTIME"
)

// LifecycleStages in canonical order
var LifecycleStages = []LifecycleStage{LifecycleBuild, LifecycleDeploy, LifecycleRuntime}

// EventSource for runtime policies
type EventSource string

const (
	EventSourceNotApplicable EventSource = "NOT_APPLICABLE"
	EventSourceDeployment    EventSource = "DEPLOYMENT_EVENT"
	EventSourceAuditLog      EventSource = "AUDIT_LOG_EVENT"
)

// EnforcementAction taken on violation
type EnforcementAction string

const (
	EnforcementUnset                       EnforcementAction = "UNSET_ENFORCEMENT"
	EnforcementScaleToZero                 EnforcementAction = "SCALE_TO_ZERO_ENFORCEMENT"
	EnforcementUnsatisfiableNodeConstraint EnforcementAction = "UNSATISFIABLE_NODE_CONSTRAINT_ENFORCEMENT"
	EnforcementKillPod                     EnforcementAction = "KILL_POD_ENFORCEMENT"
	EnforcementFailBuild                   EnforcementAction = "FAIL_BUILD_ENFORCEMENT"
	EnforcementFailKubeRequest             EnforcementAction = "FAIL_KUBE_REQUEST_ENFORCEMENT"
	EnforcementFailDeploymentCreate        EnforcementAction = "FAIL_DEPLOYMENT_CREATE_ENFORCEMENT"
	EnforcementFailDeploymentUpdate        EnforcementAction = "FAIL_DEPLOYMENT_UPDATE_ENFORCEMENT"
)

// Severity of a policy
type Severity string

const (
	SeverityLow      Severity = "LOW_SEVERITY"
	SeverityMedium   Severity = "MEDIUM_SEVERITY"
	SeverityHigh     Severity = "HIGH_SEVERITY"
	SeverityCritical Severity = "CRITICAL_SEVERITY"
	SeverityUnset    Severity = "UNSET_SEVERITY"
)

// BooleanOperator joins values of a group
type BooleanOperator string

const (
	OperatorAnd BooleanOperator = "AND"
	OperatorOr  BooleanOperator = "OR"
)

// ScopeLabel key/value selector
type ScopeLabel struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Scope narrows a policy or exclusion
type Scope struct {
	Cluster   string      `json:"cluster"`
	Namespace string      `json:"namespace"`
	Label     *ScopeLabel `json:"label"`
}

// DeploymentExclusion carve-out by deployment name and scope
type DeploymentExclusion struct {
	Name  string `json:"name"`
	Scope *Scope `json:"scope"`
}

// ImageExclusion carve-out by image name
type ImageExclusion struct {
	Name string `json:"name"`
}

// Exclusion holds exactly one of Deployment or Image.
// Both are serialized as null when unset.
type Exclusion struct {
	Name       string               `json:"name,omitempty"`
	Deployment *DeploymentExclusion `json:"deployment"`
	Image      *ImageExclusion      `json:"image"`
	Expiration string               `json:"expiration,omitempty"`
}

// MitreAttackVector tactic and techniques
type MitreAttackVector struct {
	Tactic     string   `json:"tactic"`
	Techniques []string `json:"techniques"`
}

// PolicyValue flat wire value
type PolicyValue struct {
	Value string `json:"value"`
}

// PolicyGroup one criterion on the wire
type PolicyGroup struct {
	FieldName       string          `json:"fieldName"`
	BooleanOperator BooleanOperator `json:"booleanOperator"`
	Negate          bool            `json:"negate"`
	Values          []PolicyValue   `json:"values"`
}

// PolicySection named list of groups
type PolicySection struct {
	SectionName  string        `json:"sectionName"`
	PolicyGroups []PolicyGroup `json:"policyGroups"`
}

// PolicyFields shared by the wire and form shapes.
// Fields the form never edits (PolicyVersion, LastUpdated, Source and the
// locking flags) travel through conversion untouched.
type PolicyFields struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Rationale          string              `json:"rationale"`
	Remediation        string              `json:"remediation"`
	Disabled           bool                `json:"disabled"`
	Categories         []string            `json:"categories"`
	LifecycleStages    []LifecycleStage    `json:"lifecycleStages"`
	EventSource        EventSource         `json:"eventSource"`
	Scope              []Scope             `json:"scope"`
	Severity           Severity            `json:"severity"`
	EnforcementActions []EnforcementAction `json:"enforcementActions"`
	Notifiers          []string            `json:"notifiers"`
	LastUpdated        string              `json:"lastUpdated,omitempty"`
	PolicyVersion      string              `json:"policyVersion,omitempty"`
	MitreAttackVectors []MitreAttackVector `json:"mitreAttackVectors"`
	CriteriaLocked     bool                `json:"criteriaLocked"`
	MitreVectorsLocked bool                `json:"mitreVectorsLocked"`
	IsDefault          bool                `json:"isDefault"`
	Source             string              `json:"source,omitempty"`
}

// ServerPolicy canonical backend document
type ServerPolicy struct {
	PolicyFields
	Exclusions     []Exclusion     `json:"exclusions"`
	PolicySections []PolicySection `json:"policySections"`
}

// ClientPolicyGroup criterion with decoded values
type ClientPolicyGroup struct {
	FieldName       string          `json:"fieldName"`
	BooleanOperator BooleanOperator `json:"booleanOperator"`
	Negate          bool            `json:"negate"`
	Values          []ValueObj      `json:"values"`
}

// ClientPolicySection form section
type ClientPolicySection struct {
	SectionName  string              `json:"sectionName"`
	PolicyGroups []ClientPolicyGroup `json:"policyGroups"`
}

// ClientPolicy editable form document
type ClientPolicy struct {
	PolicyFields
	PolicySections           []ClientPolicySection `json:"policySections"`
	ServerPolicySections     []PolicySection       `json:"serverPolicySections"`
	ExcludedImageNames       []string              `json:"excludedImageNames"`
	ExcludedDeploymentScopes []DeploymentExclusion `json:"excludedDeploymentScopes"`

	// sort helpers, recomputed on every load
	SORTName           string `json:"SORTName"`
	SORTLifecycleStage string `json:"SORTLifecycleStage"`
	SORTEnforcement    bool   `json:"SORTEnforcement"`
}
