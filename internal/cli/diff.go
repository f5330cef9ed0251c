package cli

import (
	"encoding/json"
	"fmt"

	"github.com/policykit/policyconv/internal/differ"
	"github.com/policykit/policyconv/internal/models"
	"github.com/policykit/policyconv/internal/observability/receipt"
	"github.com/policykit/policyconv/internal/policy"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// DiffSummary by severity
type DiffSummary struct {
	Critical int `json:"critical"`
	Moderate int `json:"moderate"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// DiffReport output structure
type DiffReport struct {
	Before  string         `json:"before"`
	After   string         `json:"after"`
	Summary DiffSummary    `json:"summary"`
	Changes []ChangeOutput `json:"changes"`
	FailOn  string         `json:"failOn"`
	Outcome string         `json:"outcome"` // "PASS" or "FAIL"
}

func newDiffCmd(opts *globalOptions) *cobra.Command {
	var (
		failOnFlag string
		format     string
		ignore     []string
		equivalent bool
		fromClient bool
		skipSchema bool
	)

	cmd := &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Explain the differences between two server policies",
		Long: `Compare two server policies and describe every change in plain terms,
rated critical, moderate or info.

Critical changes weaken the policy: criteria, enforcement, lifecycle stages,
exclusions, scope and the enabled state. Moderate changes affect severity,
event source, notifiers and categories. Documentation and metadata edits are
info.

With --client both inputs are wizard form policies and are converted to the
server shape first.

Exits 1 when a change reaches the --fail-on level.

Examples:
  policyconv diff old.json new.json
  policyconv diff old.yaml new.yaml --fail-on moderate --ignore /lastUpdated
  policyconv diff before.json after.json --equivalent --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := textOrJSON(format); err != nil {
				return err
			}
			failOn, err := ParseFailOnLevel(failOnFlag)
			if err != nil {
				return err
			}
			r := startRun(cmd, opts, "diff",
				attribute.String("policyconv.fail_on", string(failOn)),
				attribute.Bool("policyconv.equivalent", equivalent))
			defer func() { r.finish(err) }()

			before, err := loadDiffSide(cmd, r, args[0], fromClient, skipSchema)
			if err != nil {
				return err
			}
			after, err := loadDiffSide(cmd, r, args[1], fromClient, skipSchema)
			if err != nil {
				return err
			}
			r.record(
				receipt.WithInput(args[0], digestOf(before)),
				receipt.WithOutput(args[1], digestOf(after)),
				receipt.WithPolicy(after.ID, after.Name),
			)

			engineOpts := []differ.Option{differ.Ignore(ignore...)}
			if equivalent {
				engineOpts = append(engineOpts, differ.Equivalent())
			}
			result, err := differ.NewEngine(engineOpts...).Compare(before, after)
			if err != nil {
				return err
			}

			report := buildDiffReport(args[0], args[1], result, failOn)
			r.record(receipt.WithDiff(report.Summary.Critical, report.Summary.Moderate, report.Summary.Info,
				fmt.Sprintf("%d changes, outcome %s", report.Summary.Total, report.Outcome)))

			if err := printDiff(cmd, opts.palette(), format, report); err != nil {
				return err
			}
			if report.Outcome == "FAIL" {
				return &findingsError{msg: "policies differ"}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&failOnFlag, "fail-on", "critical", "Exit 1 at this severity or above: critical, moderate or info")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringArrayVar(&ignore, "ignore", nil, "JSON pointer to leave out of the comparison (repeatable)")
	cmd.Flags().BoolVar(&equivalent, "equivalent", false, "Ignore the order of array elements")
	cmd.Flags().BoolVar(&fromClient, "client", false, "Inputs are wizard form policies")
	cmd.Flags().BoolVar(&skipSchema, "skip-schema", false, "Do not check server inputs against the server policy schema")
	return cmd
}

func loadDiffSide(cmd *cobra.Command, r *run, path string, fromClient, skipSchema bool) (*models.ServerPolicy, error) {
	if !fromClient {
		return loadServerPolicy(cmd, path, skipSchema)
	}
	client, err := loadClientPolicy(cmd, path)
	if err != nil {
		return nil, err
	}
	return policy.GetServerPolicy(r.ctx, client), nil
}

func buildDiffReport(before, after string, result *differ.DiffResult, failOn FailOnLevel) DiffReport {
	crit, mod, info := countSeverities(result)
	report := DiffReport{
		Before: before,
		After:  after,
		Summary: DiffSummary{
			Critical: crit,
			Moderate: mod,
			Info:     info,
			Total:    len(result.Changes),
		},
		Changes: changeOutputs(result),
		FailOn:  string(failOn),
		Outcome: "PASS",
	}
	for _, c := range result.Changes {
		if failOn.ShouldFail(c.Severity) {
			report.Outcome = "FAIL"
			break
		}
	}
	return report
}

func printDiff(cmd *cobra.Command, p palette, format string, report DiffReport) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if report.Summary.Total == 0 {
		fmt.Fprintf(w, "%s✓ No changes detected%s\n", p.green, p.reset)
		return nil
	}

	outcome := p.green + "PASS" + p.reset
	if report.Outcome == "FAIL" {
		outcome = p.red + "FAIL" + p.reset
	}
	fmt.Fprintf(w, "%sPolicy diff:%s %s (fail-on=%s)\n", p.bold, p.reset, outcome, report.FailOn)
	fmt.Fprintf(w, "%d critical, %d moderate, %d info\n\n",
		report.Summary.Critical, report.Summary.Moderate, report.Summary.Info)

	for _, c := range report.Changes {
		severity, _ := differ.ParseSeverity(c.Severity)
		fmt.Fprintf(w, "%s[%s] %s%s\n", p.forSeverity(severity), diffIcon(c.Type), c.Message, p.reset)
		fmt.Fprintf(w, "    %s\n", c.Path)
	}
	return nil
}

func diffIcon(t string) string {
	switch differ.DiffType(t) {
	case differ.DiffTypeAdded:
		return "+"
	case differ.DiffTypeRemoved:
		return "-"
	case differ.DiffTypeChanged:
		return "~"
	default:
		return " "
	}
}
