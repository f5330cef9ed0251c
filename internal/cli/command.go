package cli

import (
	"context"
	"time"

	"github.com/policykit/policyconv/internal/observability/logging"
	otelobs "github.com/policykit/policyconv/internal/observability/otel"
	"github.com/policykit/policyconv/internal/observability/receipt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// run tracks one command invocation: span, start/complete events and the
// receipt. Commands add receipt options as they learn things and call
// finish exactly once, usually deferred.
type run struct {
	ctx     context.Context
	name    string
	start   time.Time
	sess    *receipt.Session
	endSpan func(error)
	opts    []receipt.Option
}

func startRun(cmd *cobra.Command, opts *globalOptions, name string, attrs ...attribute.KeyValue) *run {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess := receipt.Start(ctx, "policyconv "+name, opts.args)

	ctx, endSpan := otelobs.StartCommand(ctx, name, attrs...)
	logging.From(ctx).Event(ctx, name+".start", nil)

	return &run{
		ctx:     ctx,
		name:    name,
		start:   time.Now(),
		sess:    sess,
		endSpan: endSpan,
	}
}

func (r *run) log() logging.Logger {
	return logging.From(r.ctx)
}

func (r *run) record(opts ...receipt.Option) {
	r.opts = append(r.opts, opts...)
}

func (r *run) finish(err error) {
	result := "success"
	if err != nil {
		result = "fail"
	}
	r.log().Event(r.ctx, r.name+".complete", map[string]any{
		"duration_ms": time.Since(r.start).Milliseconds(),
		"result":      result,
	})
	r.endSpan(err)
	if rerr := r.sess.Finish(err, r.opts...); rerr != nil {
		r.log().Warn("cli", "failed to write receipt", "error", rerr.Error())
	}
}
