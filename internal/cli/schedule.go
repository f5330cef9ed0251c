package cli

import (
	"fmt"

	"github.com/policykit/policyconv/internal/models"
	"github.com/policykit/policyconv/internal/observability/receipt"
	"github.com/policykit/policyconv/internal/policyio"
	"github.com/policykit/policyconv/internal/schedule"
	"github.com/policykit/policyconv/internal/schema"
	"github.com/spf13/cobra"
)

func newScheduleCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Convert compliance scan schedules between form and wire shapes",
		Long: `Convert scan schedules between the form shape, which holds the time as
"HH:MM" and days as strings, and the wire shape, which holds numeric hour,
minute and days.`,
	}

	cmd.AddCommand(
		newScheduleEncodeCmd(opts),
		newScheduleDecodeCmd(opts),
		newScheduleDescribeCmd(opts),
	)
	return cmd
}

func newScheduleEncodeCmd(opts *globalOptions) *cobra.Command {
	var out documentOutput

	cmd := &cobra.Command{
		Use:   "encode <form-parameters>",
		Short: "Convert form schedule parameters into a wire schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r := startRun(cmd, opts, "schedule.encode")
			defer func() { r.finish(err) }()

			var params models.ScheduleFormParameters
			raw, err := policyio.Load(args[0], cmd.InOrStdin(), &params)
			if err != nil {
				return err
			}
			if err := schema.ValidateScheduleForm(raw); err != nil {
				return err
			}
			r.record(receipt.WithInput(args[0], digestOf(params)))

			s, err := schedule.FromFormParameters(params)
			if err != nil {
				return err
			}
			if err := out.write(cmd, s); err != nil {
				return err
			}
			r.record(receipt.WithOutput(out.path, digestOf(s)))
			return nil
		},
	}

	out.register(cmd)
	return cmd
}

func newScheduleDecodeCmd(opts *globalOptions) *cobra.Command {
	var out documentOutput

	cmd := &cobra.Command{
		Use:   "decode <schedule>",
		Short: "Convert a wire schedule into form schedule parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r := startRun(cmd, opts, "schedule.decode")
			defer func() { r.finish(err) }()

			var s models.Schedule
			if _, err := policyio.Load(args[0], cmd.InOrStdin(), &s); err != nil {
				return err
			}
			r.record(receipt.WithInput(args[0], digestOf(s)))

			params, err := schedule.ToFormParameters(s)
			if err != nil {
				return err
			}
			if err := out.write(cmd, params); err != nil {
				return err
			}
			r.record(receipt.WithOutput(out.path, digestOf(params)))
			return nil
		},
	}

	out.register(cmd)
	return cmd
}

func newScheduleDescribeCmd(opts *globalOptions) *cobra.Command {
	var fromForm bool

	cmd := &cobra.Command{
		Use:   "describe <schedule>",
		Short: "Print a wire schedule in plain words",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r := startRun(cmd, opts, "schedule.describe")
			defer func() { r.finish(err) }()

			var s models.Schedule
			if fromForm {
				var params models.ScheduleFormParameters
				raw, err := policyio.Load(args[0], cmd.InOrStdin(), &params)
				if err != nil {
					return err
				}
				if err := schema.ValidateScheduleForm(raw); err != nil {
					return err
				}
				if s, err = schedule.FromFormParameters(params); err != nil {
					return err
				}
			} else {
				if _, err := policyio.Load(args[0], cmd.InOrStdin(), &s); err != nil {
					return err
				}
				// reject what decode would reject
				if _, err := schedule.ToFormParameters(s); err != nil {
					return err
				}
			}
			r.record(receipt.WithInput(args[0], digestOf(s)))

			_, err = fmt.Fprintln(cmd.OutOrStdout(), schedule.Describe(s))
			return err
		},
	}

	cmd.Flags().BoolVar(&fromForm, "form", false, "Input is form schedule parameters")
	return cmd
}
