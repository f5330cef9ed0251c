// Package receipt writes an evidence record for each CLI run: which document
// went in, what came out, and whether validation passed.
package receipt

// ReceiptSchemaVersion current
const ReceiptSchemaVersion = "1.0"

// Receipt structure
type Receipt struct {
	SchemaVersion string             `json:"schema_version"`
	OpID          string             `json:"op_id"`
	TsStart       string             `json:"ts_start"`
	TsEnd         string             `json:"ts_end"`
	Command       string             `json:"command"`
	Args          []string           `json:"args"`
	ArgsRedacted  bool               `json:"args_redacted,omitempty"`
	Result        Result             `json:"result"`
	Input         *DocumentRef       `json:"input,omitempty"`
	Output        *DocumentRef       `json:"output,omitempty"`
	Policy        *PolicyRef         `json:"policy,omitempty"`
	Validation    *ValidationSummary `json:"validation,omitempty"`
	Diff          *DiffSummary       `json:"diff,omitempty"`
}

// Result status
type Result struct {
	Status string `json:"status"` // "success" or "fail"
	Error  string `json:"error,omitempty"`
}

// DocumentRef names a document and its canonical digest
type DocumentRef struct {
	Path   string `json:"path,omitempty"`
	Digest string `json:"digest,omitempty"` // sha256 of the JCS form
	SHA256 string `json:"sha256,omitempty"` // sha256 of the file bytes
}

// PolicyRef identifies the policy a command worked on
type PolicyRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ValidationSummary detail
type ValidationSummary struct {
	RuleSet  string    `json:"rule_set,omitempty"` // wizard|lint|custom
	Status   string    `json:"status"`             // pass|warn|fail
	RulesHit []RuleHit `json:"rules_hit,omitempty"`
}

// RuleHit detail
type RuleHit struct {
	Name     string `json:"name"`
	Severity string `json:"severity"` // warn|error
	Field    string `json:"field,omitempty"`
}

// DiffSummary detail
type DiffSummary struct {
	Critical int    `json:"critical"`
	Moderate int    `json:"moderate"`
	Info     int    `json:"info"`
	Summary  string `json:"summary,omitempty"`
}
