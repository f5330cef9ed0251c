package differ

import (
	"strconv"
	"strings"

	"github.com/policykit/policyconv/internal/models"
	"github.com/wI2L/jsondiff"
)

// SeverityLevel 0=safe, 1=mod, 2=crit
type SeverityLevel int

const (
	SeveritySafe SeverityLevel = iota
	SeverityModerate
	SeverityCritical
)

// fieldSeverity by top-level document key
var fieldSeverity = map[string]SeverityLevel{
	"policySections":     SeverityCritical,
	"lifecycleStages":    SeverityCritical,
	"enforcementActions": SeverityCritical,
	"disabled":           SeverityCritical,
	"eventSource":        SeverityCritical,
	"exclusions":         SeverityModerate,
	"scope":              SeverityModerate,
	"notifiers":          SeverityModerate,
	"severity":           SeverityModerate,
	"categories":         SeverityModerate,
	"mitreAttackVectors": SeverityModerate,
	"criteriaLocked":     SeverityModerate,
	"mitreVectorsLocked": SeverityModerate,
	"isDefault":          SeverityModerate,
}

var fieldLabels = map[string]string{
	"lifecycleStages":    "Lifecycle stages",
	"enforcementActions": "Enforcement actions",
	"eventSource":        "Event source",
	"exclusions":         "Exclusions",
	"scope":              "Scope",
	"notifiers":          "Notifiers",
	"severity":           "Severity",
	"categories":         "Categories",
	"mitreAttackVectors": "MITRE ATT&CK vectors",
	"criteriaLocked":     "Criteria lock",
	"mitreVectorsLocked": "MITRE vectors lock",
	"isDefault":          "Default flag",
}

var docFields = map[string]bool{
	"name":        true,
	"description": true,
	"rationale":   true,
	"remediation": true,
}

type translator struct {
	before *models.ServerPolicy
	after  *models.ServerPolicy
}

func newTranslator(before, after *models.ServerPolicy) *translator {
	return &translator{before: before, after: after}
}

// Translate patches to english, dropping duplicate messages about the
// same criterion
func (t *translator) Translate(patches jsondiff.Patch) []Change {
	var changes []Change
	seen := make(map[string]bool)

	for _, op := range patches {
		c, ok := t.translateOperation(op)
		if !ok {
			continue
		}
		key := dedupeKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		changes = append(changes, c)
	}
	return changes
}

// dedupeKey scopes criterion messages to their group pointer. Section
// names need not be unique, so the message alone cannot tell two groups
// apart.
func dedupeKey(c Change) string {
	tokens := splitPointer(c.Path)
	if len(tokens) >= 4 && tokens[0] == "policySections" && tokens[2] == "policyGroups" {
		return c.Message + "@" + strings.Join(tokens[:4], "/")
	}
	return c.Message
}

func (t *translator) translateOperation(op jsondiff.Operation) (Change, bool) {
	var diffType DiffType
	switch op.Type {
	case jsondiff.OperationAdd:
		diffType = DiffTypeAdded
	case jsondiff.OperationRemove:
		diffType = DiffTypeRemoved
	case jsondiff.OperationReplace, jsondiff.OperationMove, jsondiff.OperationCopy:
		diffType = DiffTypeChanged
	default:
		return Change{}, false
	}

	tokens := splitPointer(op.Path)
	c := Change{Path: op.Path, DiffType: diffType}
	if len(tokens) == 0 {
		c.Message = "Policy replaced."
		c.Severity = SeverityCritical
		return c, true
	}

	field := tokens[0]
	switch {
	case field == "policySections":
		c.Message = t.sectionMessage(tokens[1:], diffType)
		c.Severity = SeverityCritical
	case field == "disabled":
		c.Message = "Policy enabled state changed."
		c.Severity = SeverityCritical
	case docFields[field]:
		c.Message = "Documentation update: " + field + " changed."
		c.Severity = SeveritySafe
	case fieldLabels[field] != "":
		c.Message = fieldLabels[field] + " " + verb(diffType) + "."
		c.Severity = fieldSeverity[field]
	default:
		c.Message = "Metadata '" + field + "' " + verb(diffType) + "."
		c.Severity = SeveritySafe
	}
	return c, true
}

// sectionMessage for a path below /policySections
func (t *translator) sectionMessage(tokens []string, diffType DiffType) string {
	if len(tokens) == 0 {
		return "Policy sections " + verb(diffType) + "."
	}
	section, ok := t.index(tokens[0], diffType, -1)
	if !ok {
		return "Policy sections " + verb(diffType) + "."
	}
	sectionName := t.sectionName(section, diffType)

	if len(tokens) == 1 {
		return "Policy section '" + sectionName + "' " + verb(diffType) + "."
	}
	if tokens[1] == "sectionName" {
		return "Policy section '" + sectionName + "' renamed."
	}
	if tokens[1] != "policyGroups" || len(tokens) < 3 {
		return "Policy section '" + sectionName + "' " + verb(diffType) + "."
	}

	group, ok := t.index(tokens[2], diffType, section)
	if !ok {
		return "Policy section '" + sectionName + "' criteria " + verb(diffType) + "."
	}
	criterion := "Criterion '" + t.fieldName(section, group, diffType) + "' in section '" + sectionName + "'"

	if len(tokens) == 3 {
		return criterion + " " + verb(diffType) + "."
	}
	switch tokens[3] {
	case "values":
		if len(tokens) == 4 || diffType == DiffTypeChanged {
			return criterion + " value changed."
		}
		return criterion + " value " + verb(diffType) + "."
	case "negate":
		return criterion + " negation changed."
	case "booleanOperator":
		return criterion + " operator changed."
	case "fieldName":
		return criterion + " field changed."
	default:
		return criterion + " " + verb(diffType) + "."
	}
}

// index resolves an array token. "-" names the element past the end of the
// before document, which is the last element of the after document.
func (t *translator) index(token string, diffType DiffType, section int) (int, bool) {
	if token != "-" {
		i, err := strconv.Atoi(token)
		return i, err == nil
	}
	p := t.source(diffType)
	if p == nil {
		return 0, false
	}
	if section < 0 {
		return len(p.PolicySections) - 1, len(p.PolicySections) > 0
	}
	s := pickSection(p, section)
	if s == nil {
		return 0, false
	}
	return len(s.PolicyGroups) - 1, len(s.PolicyGroups) > 0
}

// sectionName looks in the document that still has the section
func (t *translator) sectionName(section int, diffType DiffType) string {
	if s := pickSection(t.source(diffType), section); s != nil && s.SectionName != "" {
		return s.SectionName
	}
	return "#" + strconv.Itoa(section+1)
}

func (t *translator) fieldName(section, group int, diffType DiffType) string {
	s := pickSection(t.source(diffType), section)
	if s == nil || group < 0 || group >= len(s.PolicyGroups) {
		return "#" + strconv.Itoa(group+1)
	}
	return s.PolicyGroups[group].FieldName
}

func (t *translator) source(diffType DiffType) *models.ServerPolicy {
	if diffType == DiffTypeAdded {
		return t.after
	}
	return t.before
}

func pickSection(p *models.ServerPolicy, i int) *models.PolicySection {
	if p == nil || i < 0 || i >= len(p.PolicySections) {
		return nil
	}
	return &p.PolicySections[i]
}

func verb(d DiffType) string {
	switch d {
	case DiffTypeAdded:
		return "added"
	case DiffTypeRemoved:
		return "removed"
	default:
		return "changed"
	}
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// splitPointer breaks an RFC 6901 pointer into unescaped tokens
func splitPointer(ptr string) []string {
	if ptr == "" || ptr == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	for i, p := range parts {
		parts[i] = pointerUnescaper.Replace(p)
	}
	return parts
}
