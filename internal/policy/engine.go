package policy

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/policykit/policyconv/internal/models"
)

// Engine evaluates CEL validation rules against a client policy
type Engine struct {
	env   *cel.Env
	codec *Codec
}

func NewEngine() (*Engine, error) {
	return NewEngineWithCodec(defaultCodec)
}

// NewEngineWithCodec uses codec for criterion value checks
func NewEngineWithCodec(codec *Codec) (*Engine, error) {
	if codec == nil {
		codec = defaultCodec
	}
	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
		ext.Strings(),
		cel.Function("validImageName",
			cel.Overload("validImageName_string",
				[]*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(validImageName))),
		cel.Function("validCriterionValue",
			cel.Overload("validCriterionValue_string_string",
				[]*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(field, raw ref.Val) ref.Val {
					f, ok1 := field.(types.String)
					r, ok2 := raw.(types.String)
					if !ok1 || !ok2 {
						return types.Bool(false)
					}
					_, err := codec.Decode(string(r), string(f))
					return types.Bool(err == nil)
				}))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env, codec: codec}, nil
}

func validImageName(arg ref.Val) ref.Val {
	s, ok := arg.(types.String)
	if !ok {
		return types.Bool(false)
	}
	_, err := name.ParseReference(string(s), name.WeakValidation)
	return types.Bool(err == nil)
}

// Evaluate checks rules
func (e *Engine) Evaluate(rules *models.ValidationRuleSet, p *models.ClientPolicy) ([]models.ValidationResult, error) {
	results := make([]models.ValidationResult, 0, len(rules.Rules))

	input := clientPolicyToMap(p, e.codec)

	for _, rule := range rules.Rules {
		result, err := e.evaluateRule(rule, input)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate rule %q: %w", rule.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// evaluateRule
func (e *Engine) evaluateRule(rule models.ValidationRule, input map[string]interface{}) (models.ValidationResult, error) {
	failed := func(msg string) models.ValidationResult {
		return models.ValidationResult{
			RuleName:   rule.Name,
			Field:      rule.Field,
			Passed:     false,
			Severity:   severityOf(rule),
			FailureMsg: msg,
		}
	}

	// compile
	ast, issues := e.env.Compile(rule.Expr)
	if issues != nil && issues.Err() != nil {
		return failed(fmt.Sprintf("CEL compile error: %v", issues.Err())), nil
	}

	// program
	prg, err := e.env.Program(ast)
	if err != nil {
		return failed(fmt.Sprintf("CEL program error: %v", err)), nil
	}

	// eval
	out, _, err := prg.Eval(map[string]interface{}{
		"input": input,
	})
	if err != nil {
		return failed(fmt.Sprintf("CEL evaluation error: %v", err)), nil
	}

	passed, ok := out.Value().(bool)
	if !ok {
		return failed(fmt.Sprintf("Rule expression must return boolean, got %T", out.Value())), nil
	}

	if !passed {
		return failed(rule.FailureMsg), nil
	}
	return models.ValidationResult{
		RuleName: rule.Name,
		Field:    rule.Field,
		Passed:   true,
		Severity: severityOf(rule),
	}, nil
}

func severityOf(rule models.ValidationRule) models.RuleSeverity {
	if rule.Severity == "" {
		return models.RuleSeverityError
	}
	return rule.Severity
}

// CompileAndValidate
func (e *Engine) CompileAndValidate(rules *models.ValidationRuleSet) error {
	var errors []string

	for _, rule := range rules.Rules {
		_, issues := e.env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			errors = append(errors, fmt.Sprintf("rule %q: %v", rule.Name, issues.Err()))
		}
		switch rule.Severity {
		case "", models.RuleSeverityError, models.RuleSeverityWarn:
		default:
			errors = append(errors, fmt.Sprintf("rule %q: unknown severity %q", rule.Name, rule.Severity))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("rule set validation failed:\n  %s", strings.Join(errors, "\n  "))
	}

	return nil
}

// HasErrors reports whether any error-severity rule failed
func HasErrors(results []models.ValidationResult) bool {
	for _, r := range results {
		if !r.Passed && r.Severity == models.RuleSeverityError {
			return true
		}
	}
	return false
}
