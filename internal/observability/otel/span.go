package otel

import (
	"context"

	"github.com/policykit/policyconv/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracingKey struct{}

// WithTracing makes t available to every command run under ctx
func WithTracing(ctx context.Context, t *Tracing) context.Context {
	return context.WithValue(ctx, tracingKey{}, t)
}

// TracingFrom is nil unless --otel was given
func TracingFrom(ctx context.Context) *Tracing {
	t, _ := ctx.Value(tracingKey{}).(*Tracing)
	return t
}

// StartCommand opens a "policyconv.<name>" span when tracing is enabled.
// The returned func ends the span and records err on it; it is a no-op
// when tracing is off.
func StartCommand(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	t := TracingFrom(ctx)
	if t == nil || t.Tracer == nil {
		return ctx, func(error) {}
	}

	attrs = append([]attribute.KeyValue{
		attribute.String("policyconv.op_id", observability.OpID(ctx)),
		attribute.String("policyconv.command", name),
	}, attrs...)

	ctx, span := t.Tracer.Start(ctx, "policyconv."+name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed")
		} else {
			span.SetStatus(codes.Ok, "success")
		}
		span.End()
	}
}
