package cli

import (
	"fmt"
	"strings"

	"github.com/policykit/policyconv/internal/models"
	"github.com/policykit/policyconv/internal/observability/receipt"
	"github.com/policykit/policyconv/internal/policy"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

func newLifecycleCmd(opts *globalOptions) *cobra.Command {
	var out documentOutput
	var stageFlag string
	var checked bool

	cmd := &cobra.Command{
		Use:   "lifecycle <client-policy>",
		Short: "Toggle a lifecycle stage on a wizard form policy",
		Long: `Check or uncheck a lifecycle stage the way the policy wizard does.

Unchecking a stage drops the enforcement actions that only apply to it.
Unchecking BUILD clears excluded images. RUNTIME selects a deployment event
source when none is set, and leaving RUNTIME resets it to NOT_APPLICABLE.

Examples:
  policyconv lifecycle wizard.json --stage RUNTIME
  policyconv lifecycle wizard.json --stage BUILD --checked=false -o wizard.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			stage, err := parseStage(stageFlag)
			if err != nil {
				return err
			}
			r := startRun(cmd, opts, "lifecycle",
				attribute.String("policyconv.stage", string(stage)),
				attribute.Bool("policyconv.checked", checked))
			defer func() { r.finish(err) }()

			client, err := loadClientPolicy(cmd, args[0])
			if err != nil {
				return err
			}
			r.record(
				receipt.WithInput(args[0], digestOf(client)),
				receipt.WithPolicy(client.ID, client.Name),
			)

			changes := policy.GetLifeCyclesUpdates(client, stage, checked)
			changes.Apply(client)
			r.log().Debug("cli", "lifecycle updated", "stage", string(stage), "checked", checked,
				"stages", len(client.LifecycleStages))

			if err := out.write(cmd, client); err != nil {
				return err
			}
			r.record(receipt.WithOutput(out.path, digestOf(client)))
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&stageFlag, "stage", "", "Lifecycle stage: BUILD, DEPLOY or RUNTIME")
	cmd.Flags().BoolVar(&checked, "checked", true, "Whether the stage is selected")
	_ = cmd.MarkFlagRequired("stage")
	return cmd
}

func parseStage(s string) (models.LifecycleStage, error) {
	stage := models.LifecycleStage(strings.ToUpper(s))
	for _, known := range models.LifecycleStages {
		if stage == known {
			return stage, nil
		}
	}
	return "", fmt.Errorf("invalid stage %q (use BUILD, DEPLOY or RUNTIME)", s)
}
