package cli

import (
	"encoding/json"
	"fmt"

	"github.com/policykit/policyconv/internal/models"
	"github.com/policykit/policyconv/internal/observability/receipt"
	"github.com/policykit/policyconv/internal/policy"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// ValidateResult output structure
type ValidateResult struct {
	PolicyID string                    `json:"policyId,omitempty"`
	RuleSet  string                    `json:"ruleSet"`
	Status   string                    `json:"status"` // pass|warn|fail
	Results  []models.ValidationResult `json:"results"`
}

func newValidateCmd(opts *globalOptions) *cobra.Command {
	var (
		preset     string
		rulesPath  string
		fromServer bool
		strict     bool
		skipSchema bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "validate <client-policy>",
		Short: "Check a wizard form policy against a CEL rule set",
		Long: `Evaluate a rule set against a wizard form policy.

Built-in rule sets:
  wizard  the checks the policy wizard runs before saving (default)
  lint    style checks such as missing rationale or remediation

A custom rule set can be given with --rules. With --server the input is a
server policy and is converted to the form shape first.

Exits 1 when an error-severity rule fails, or any rule fails with --strict.

Examples:
  policyconv validate wizard.json
  policyconv validate --server policy.yaml --preset lint
  policyconv validate wizard.json --rules team-rules.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := textOrJSON(format); err != nil {
				return err
			}
			r := startRun(cmd, opts, "validate",
				attribute.String("policyconv.preset", preset),
				attribute.Bool("policyconv.strict", strict))
			defer func() { r.finish(err) }()

			rules, ruleSetName, err := resolveRuleSet(preset, rulesPath)
			if err != nil {
				return err
			}

			var client *models.ClientPolicy
			if fromServer {
				server, err := loadServerPolicy(cmd, args[0], skipSchema)
				if err != nil {
					return err
				}
				r.record(receipt.WithInput(args[0], digestOf(server)))
				client = policy.GetClientWizardPolicy(r.ctx, server)
			} else {
				client, err = loadClientPolicy(cmd, args[0])
				if err != nil {
					return err
				}
				r.record(receipt.WithInput(args[0], digestOf(client)))
			}
			r.record(receipt.WithPolicy(client.ID, client.Name))

			engine, err := policy.NewEngine()
			if err != nil {
				return err
			}
			if err := engine.CompileAndValidate(rules); err != nil {
				return err
			}
			results, err := engine.Evaluate(rules, client)
			if err != nil {
				return err
			}

			report := ValidateResult{
				PolicyID: client.ID,
				RuleSet:  ruleSetName,
				Status:   validationStatus(results),
				Results:  results,
			}
			r.record(receipt.WithValidation(ruleSetName, report.Status, ruleHits(results)))
			r.log().Info("cli", "validation finished", "rule_set", ruleSetName, "status", report.Status)

			if err := printValidation(cmd, opts.palette(), format, report); err != nil {
				return err
			}
			if report.Status == "fail" || (strict && report.Status == "warn") {
				return &findingsError{msg: "policy validation failed"}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "wizard", "Built-in rule set: wizard or lint")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Load a custom YAML rule set instead of a preset")
	cmd.Flags().BoolVar(&fromServer, "server", false, "Input is a server policy")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	cmd.Flags().BoolVar(&skipSchema, "skip-schema", false, "Do not check a --server input against the server policy schema")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

// resolveRuleSet returns the rules and the name recorded in reports
func resolveRuleSet(preset, rulesPath string) (*models.ValidationRuleSet, string, error) {
	if rulesPath != "" {
		rules, err := policy.LoadRuleSet(rulesPath)
		if err != nil {
			return nil, "", err
		}
		name := rules.Name
		if name == "" {
			name = "custom"
		}
		return rules, name, nil
	}
	rules := policy.GetPreset(preset)
	if rules == nil {
		return nil, "", fmt.Errorf("unknown preset %q (available: %v)", preset, policy.ListPresetNames())
	}
	return rules, preset, nil
}

func validationStatus(results []models.ValidationResult) string {
	if policy.HasErrors(results) {
		return "fail"
	}
	for _, res := range results {
		if !res.Passed {
			return "warn"
		}
	}
	return "pass"
}

func ruleHits(results []models.ValidationResult) []receipt.RuleHit {
	var hits []receipt.RuleHit
	for _, res := range results {
		if res.Passed {
			continue
		}
		hits = append(hits, receipt.RuleHit{
			Name:     res.RuleName,
			Severity: string(res.Severity),
			Field:    res.Field,
		})
	}
	return hits
}

func printValidation(cmd *cobra.Command, p palette, format string, report ValidateResult) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "%sRule set:%s %s\n\n", p.bold, p.reset, report.RuleSet)
	for _, res := range report.Results {
		switch {
		case res.Passed:
			fmt.Fprintf(w, "%s✓%s %s\n", p.green, p.reset, res.RuleName)
		case res.Severity == models.RuleSeverityWarn:
			fmt.Fprintf(w, "%s⚠%s %s\n", p.yellow, p.reset, res.RuleName)
			fmt.Fprintf(w, "  %s→ %s%s\n", p.yellow, res.FailureMsg, p.reset)
		default:
			fmt.Fprintf(w, "%s✗%s %s\n", p.red, p.reset, res.RuleName)
			fmt.Fprintf(w, "  %s→ %s%s\n", p.red, res.FailureMsg, p.reset)
		}
	}

	switch report.Status {
	case "pass":
		fmt.Fprintf(w, "\n%s%s✓ All policy checks passed%s\n", p.bold, p.green, p.reset)
	case "warn":
		fmt.Fprintf(w, "\n%s%s⚠ Policy checks passed with warnings%s\n", p.bold, p.yellow, p.reset)
	default:
		fmt.Fprintf(w, "\n%s%s✗ Policy check failed%s\n", p.bold, p.red, p.reset)
	}
	return nil
}
