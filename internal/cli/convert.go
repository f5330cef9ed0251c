package cli

import (
	"github.com/policykit/policyconv/internal/observability/receipt"
	"github.com/policykit/policyconv/internal/policy"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

func newToClientCmd(opts *globalOptions) *cobra.Command {
	var out documentOutput
	var skipSchema bool

	cmd := &cobra.Command{
		Use:   "to-client <server-policy>",
		Short: "Convert a server policy into the wizard form shape",
		Long: `Convert a stored policy into the shape edited by the policy wizard.

Criterion values are decoded into structured records, exclusions are split
into excluded images and excluded deployments, and the original sections are
kept as serverPolicySections so an untouched form converts back unchanged.

Use "-" to read from stdin.

Examples:
  policyconv to-client policy.json
  policyconv to-client policy.yaml -o wizard.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r := startRun(cmd, opts, "to-client")
			defer func() { r.finish(err) }()

			server, err := loadServerPolicy(cmd, args[0], skipSchema)
			if err != nil {
				return err
			}
			r.record(
				receipt.WithInput(args[0], digestOf(server)),
				receipt.WithPolicy(server.ID, server.Name),
			)

			client := policy.GetClientWizardPolicy(r.ctx, server)
			if err := out.write(cmd, client); err != nil {
				return err
			}
			r.record(receipt.WithOutput(out.path, digestOf(client)))
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().BoolVar(&skipSchema, "skip-schema", false, "Do not check the input against the server policy schema")
	return cmd
}

func newToServerCmd(opts *globalOptions) *cobra.Command {
	var out documentOutput
	var trim bool

	cmd := &cobra.Command{
		Use:   "to-server <client-policy>",
		Short: "Convert a wizard form policy back into the server shape",
		Long: `Convert a wizard form policy into the stored shape.

Criterion values are encoded back into flat strings and exclusions are
merged, deployments first. With --trim, free text fields are trimmed of
surrounding whitespace first, as the wizard does on save.

Examples:
  policyconv to-server wizard.json
  policyconv to-server wizard.json --trim -o policy.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r := startRun(cmd, opts, "to-server", attribute.Bool("policyconv.trim", trim))
			defer func() { r.finish(err) }()

			client, err := loadClientPolicy(cmd, args[0])
			if err != nil {
				return err
			}
			r.record(
				receipt.WithInput(args[0], digestOf(client)),
				receipt.WithPolicy(client.ID, client.Name),
			)

			if trim {
				client = policy.TrimClientPolicy(client)
			}
			server := policy.GetServerPolicy(r.ctx, client)
			if err := out.write(cmd, server); err != nil {
				return err
			}
			r.record(receipt.WithOutput(out.path, digestOf(server)))
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().BoolVar(&trim, "trim", false, "Trim whitespace from text fields before converting")
	return cmd
}

func newNewCmd(opts *globalOptions) *cobra.Command {
	var out documentOutput

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print an empty wizard form policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r := startRun(cmd, opts, "new")
			defer func() { r.finish(err) }()

			return out.write(cmd, policy.NewClientPolicy())
		},
	}

	out.register(cmd)
	return cmd
}
