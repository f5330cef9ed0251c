package cli

import (
	"encoding/json"
	"fmt"

	"github.com/policykit/policyconv/internal/differ"
	"github.com/policykit/policyconv/internal/observability/receipt"
	"github.com/policykit/policyconv/internal/policy"
	"github.com/spf13/cobra"
)

// ChangeOutput is one difference in JSON reports
type ChangeOutput struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// RoundtripResult output structure
type RoundtripResult struct {
	PolicyID string         `json:"policyId,omitempty"`
	Lossless bool           `json:"lossless"`
	Changes  []ChangeOutput `json:"changes"`
}

func changeOutputs(result *differ.DiffResult) []ChangeOutput {
	out := make([]ChangeOutput, 0, len(result.Changes))
	for _, c := range result.Changes {
		out = append(out, ChangeOutput{
			Path:     c.Path,
			Type:     string(c.DiffType),
			Severity: differ.SeverityString(c.Severity),
			Message:  c.Message,
		})
	}
	return out
}

func newRoundtripCmd(opts *globalOptions) *cobra.Command {
	var format string
	var skipSchema bool

	cmd := &cobra.Command{
		Use:   "roundtrip <server-policy>",
		Short: "Check that a server policy survives conversion to the form and back",
		Long: `Convert a server policy to the wizard form and back, then compare the
result with the input. Exclusion order is ignored because deployments are
always emitted before images.

Exits 1 when the round trip changes the policy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := textOrJSON(format); err != nil {
				return err
			}
			r := startRun(cmd, opts, "roundtrip")
			defer func() { r.finish(err) }()

			server, err := loadServerPolicy(cmd, args[0], skipSchema)
			if err != nil {
				return err
			}
			r.record(
				receipt.WithInput(args[0], digestOf(server)),
				receipt.WithPolicy(server.ID, server.Name),
			)

			back := policy.GetServerPolicy(r.ctx, policy.GetClientWizardPolicy(r.ctx, server))
			r.record(receipt.WithOutput("", digestOf(back)))

			// missing lists come back empty; that is not a loss
			result, err := differ.NewEngine(differ.Equivalent()).Compare(policy.NormalizeServerPolicy(server), back)
			if err != nil {
				return err
			}
			crit, mod, info := countSeverities(result)
			r.record(receipt.WithDiff(crit, mod, info, fmt.Sprintf("%d changes after round trip", len(result.Changes))))

			report := RoundtripResult{
				PolicyID: server.ID,
				Lossless: !result.HasChanges,
				Changes:  changeOutputs(result),
			}
			if err := printRoundtrip(cmd, opts.palette(), format, report); err != nil {
				return err
			}
			if !report.Lossless {
				return &findingsError{msg: "round trip changed the policy"}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&skipSchema, "skip-schema", false, "Do not check the input against the server policy schema")
	return cmd
}

func printRoundtrip(cmd *cobra.Command, p palette, format string, report RoundtripResult) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if report.Lossless {
		fmt.Fprintf(w, "%s✓ Round trip is lossless%s\n", p.green, p.reset)
		return nil
	}
	fmt.Fprintf(w, "%s✗ Round trip changed the policy%s\n", p.red, p.reset)
	for _, c := range report.Changes {
		fmt.Fprintf(w, "  • %s (%s)\n", c.Message, c.Path)
	}
	return nil
}

func countSeverities(result *differ.DiffResult) (critical, moderate, info int) {
	for _, c := range result.Changes {
		switch c.Severity {
		case differ.SeverityCritical:
			critical++
		case differ.SeverityModerate:
			moderate++
		default:
			info++
		}
	}
	return critical, moderate, info
}
