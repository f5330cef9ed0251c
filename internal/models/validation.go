package models

// RuleSeverity of a validation rule
type RuleSeverity string

const (
	RuleSeverityError RuleSeverity = "error"
	RuleSeverityWarn  RuleSeverity = "warn"
)

// ValidationRuleSet from yaml
type ValidationRuleSet struct {
	Name  string           `yaml:"name"`
	Rules []ValidationRule `yaml:"rules"`
}

// ValidationRule cel rule over the client form
type ValidationRule struct {
	Name       string       `yaml:"name"`
	Field      string       `yaml:"field,omitempty"`
	Expr       string       `yaml:"expr"`
	FailureMsg string       `yaml:"failure_msg"`
	Severity   RuleSeverity `yaml:"severity,omitempty"`
}

// ValidationResult eval result
type ValidationResult struct {
	RuleName   string       `json:"rule"`
	Field      string       `json:"field,omitempty"`
	Passed     bool         `json:"passed"`
	Severity   RuleSeverity `json:"severity"`
	FailureMsg string       `json:"failure_msg,omitempty"`
}
