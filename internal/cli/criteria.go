package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/policykit/policyconv/internal/criteria"
	"github.com/spf13/cobra"
)

// CriterionOutput is one field in JSON listings
type CriterionOutput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func newCriteriaCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "List the known criterion fields and their value encodings",
		Long: `List every criterion field in the built-in table with the category that
selects how its values are encoded on the wire:

  plain                 the value is used as is
  numeric               comparison operator and number, e.g. ">=7"
  compound              key=value
  environment_variable  source=key=value
  image_signing         one value per trusted integration

Fields that are not listed are treated as plain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := textOrJSON(format); err != nil {
				return err
			}
			r := startRun(cmd, opts, "criteria")
			defer func() { r.finish(err) }()

			fields := criteria.Default().Fields()
			w := cmd.OutOrStdout()

			if format == "json" {
				out := make([]CriterionOutput, len(fields))
				for i, f := range fields {
					out[i] = CriterionOutput{Name: f.Name, Category: f.Category.String()}
				}
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(data))
				return err
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tCATEGORY")
			for _, f := range fields {
				fmt.Fprintf(tw, "%s\t%s\n", f.Name, f.Category)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}
