// Package cli implements the policyconv command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/policykit/policyconv/internal/observability"
	"github.com/policykit/policyconv/internal/observability/logging"
	otelobs "github.com/policykit/policyconv/internal/observability/otel"
	"github.com/policykit/policyconv/internal/observability/receipt"
	"github.com/policykit/policyconv/internal/version"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK       = 0
	ExitFindings = 1 // validation failed, policies differ, lossy round trip
	ExitError    = 2 // bad input or runtime failure
)

// findingsError signals a completed run whose result is a failure. The
// command has already reported the details.
type findingsError struct {
	msg string
}

func (e *findingsError) Error() string { return e.msg }

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	logFormat string
	logLevel  string
	logOutput string

	otelEnabled     bool
	otelEndpoint    string
	otelProtocol    string
	otelInsecure    bool
	otelSampleRatio float64
	otelHeaders     []string

	receiptPath string
	receiptMode string

	noColor bool

	// raw arguments, recorded in receipts
	args []string

	// set up in PersistentPreRunE, released by cleanup
	closers []func(context.Context) error
}

func (o *globalOptions) palette() palette {
	return newPalette(!o.noColor && os.Getenv("NO_COLOR") == "")
}

// setup wires logger, tracer and receipt sink into the command context
func (o *globalOptions) setup(cmd *cobra.Command) error {
	ctx := observability.WithOpID(cmd.Context())

	logger, err := logging.NewLogger(logging.Config{
		Format: o.logFormat,
		Level:  o.logLevel,
		Output: o.logOutput,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	ctx = logging.WithLogger(ctx, logger)
	o.closers = append(o.closers, func(context.Context) error { return logger.Close() })

	if o.otelEnabled {
		headers, err := otelobs.ParseHeaders(o.otelHeaders)
		if err != nil {
			return err
		}
		cfg := otelobs.DefaultConfig()
		cfg.Enabled = true
		cfg.Endpoint = o.otelEndpoint
		cfg.Protocol = o.otelProtocol
		cfg.Insecure = o.otelInsecure
		cfg.SampleRatio = o.otelSampleRatio
		cfg.Headers = headers

		tracing, err := otelobs.Setup(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		ctx = otelobs.WithTracing(ctx, tracing)
		o.closers = append(o.closers, tracing.Shutdown)
	}

	if o.receiptPath != "" {
		mode, err := receipt.ParseMode(o.receiptMode)
		if err != nil {
			return err
		}
		sink, err := receipt.OpenFile(o.receiptPath, mode)
		if err != nil {
			return err
		}
		ctx = receipt.WithSink(ctx, sink)
		o.closers = append(o.closers, func(context.Context) error { return sink.Close() })
	}

	cmd.SetContext(ctx)
	return nil
}

// cleanup releases resources in reverse order of setup
func (o *globalOptions) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(o.closers) - 1; i >= 0; i-- {
		_ = o.closers[i](ctx)
	}
	o.closers = nil
}

// NewRootCmd builds the command tree
func NewRootCmd() (*cobra.Command, *globalOptions) {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "policyconv",
		Short: "Convert and check security policy documents",
		Long: `policyconv converts security policies between the stored (server) shape
and the editable (client wizard) shape, validates them with CEL rule sets,
diffs them, and converts compliance scan schedules.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logFormat, "log-format", "pretty", "Log format: pretty, jsonl or none")
	pf.StringVar(&opts.logLevel, "log-level", logging.LevelWarn, "Minimum log level: debug, info, warn or error")
	pf.StringVar(&opts.logOutput, "log-output", "stderr", "Log destination: stderr or a file path")
	pf.BoolVar(&opts.otelEnabled, "otel", false, "Export OpenTelemetry traces")
	pf.StringVar(&opts.otelEndpoint, "otel-endpoint", "", "OTLP endpoint (default from OTEL_EXPORTER_OTLP_ENDPOINT)")
	pf.StringVar(&opts.otelProtocol, "otel-protocol", otelobs.ProtocolHTTP, "OTLP protocol: otlphttp or otlpgrpc")
	pf.BoolVar(&opts.otelInsecure, "otel-insecure", false, "Disable TLS for the OTLP exporter")
	pf.Float64Var(&opts.otelSampleRatio, "otel-sample-ratio", 1.0, "Trace sample ratio between 0 and 1")
	pf.StringArrayVar(&opts.otelHeaders, "otel-header", nil, "Extra OTLP header as key=value (repeatable)")
	pf.StringVar(&opts.receiptPath, "receipt", "", "Write a JSON receipt of this run to the given path")
	pf.StringVar(&opts.receiptMode, "receipt-mode", string(receipt.ModeOverwrite), "Receipt write mode: overwrite or append")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable ANSI colors in text output")

	root.AddCommand(
		newToClientCmd(opts),
		newToServerCmd(opts),
		newNewCmd(opts),
		newRoundtripCmd(opts),
		newValidateCmd(opts),
		newDiffCmd(opts),
		newLifecycleCmd(opts),
		newScheduleCmd(opts),
		newCriteriaCmd(opts),
	)
	return root, opts
}

// Run executes the CLI and returns the process exit code
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, opts := NewRootCmd()
	defer opts.cleanup()
	opts.args = args

	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var findings *findingsError
	if errors.As(err, &findings) {
		return ExitFindings
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitError
}

// Execute runs the CLI against the process arguments and exits
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
