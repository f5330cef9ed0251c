package otel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "disabled is always valid",
			cfg:     Config{Enabled: false, Protocol: "invalid", SampleRatio: -1},
			wantErr: false,
		},
		{
			name:    "valid otlphttp",
			cfg:     Config{Enabled: true, Protocol: ProtocolHTTP, SampleRatio: 0.5},
			wantErr: false,
		},
		{
			name:    "valid otlpgrpc",
			cfg:     Config{Enabled: true, Protocol: ProtocolGRPC, SampleRatio: 1.0},
			wantErr: false,
		},
		{
			name:    "invalid protocol",
			cfg:     Config{Enabled: true, Protocol: "invalid", SampleRatio: 1.0},
			wantErr: true,
		},
		{
			name:    "sample ratio below 0",
			cfg:     Config{Enabled: true, Protocol: ProtocolHTTP, SampleRatio: -0.1},
			wantErr: true,
		},
		{
			name:    "sample ratio above 1",
			cfg:     Config{Enabled: true, Protocol: ProtocolHTTP, SampleRatio: 1.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpanCreatedWithAttributes(t *testing.T) {
	// Create in-memory span recorder
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	h := FromProvider(tp)
	ctx := context.Background()

	// Start and end a span
	ctx, span := h.Tracer.Start(ctx, "policyconv.test",
		trace.WithAttributes(
			attribute.String("policyconv.command", "test"),
			attribute.String("policyconv.op_id", "abc-123"),
		),
	)
	span.SetStatus(codes.Ok, "success")
	span.End()

	// Force flush
	_ = tp.ForceFlush(ctx)

	// Check recorded spans
	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name() != "policyconv.test" {
		t.Errorf("span name = %q, want %q", s.Name(), "policyconv.test")
	}

	// Check attributes
	attrs := s.Attributes()
	var foundCommand, foundOpID bool
	for _, attr := range attrs {
		switch string(attr.Key) {
		case "policyconv.command":
			foundCommand = true
			if attr.Value.AsString() != "test" {
				t.Errorf("policyconv.command = %q, want %q", attr.Value.AsString(), "test")
			}
		case "policyconv.op_id":
			foundOpID = true
		}
	}
	if !foundCommand {
		t.Error("missing attribute: policyconv.command")
	}
	if !foundOpID {
		t.Error("missing attribute: policyconv.op_id")
	}
}

func TestSpanRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	h := FromProvider(tp)
	ctx := context.Background()

	// Start span, record error, end
	_, span := h.Tracer.Start(ctx, "policyconv.failing")
	testErr := errors.New("something went wrong")
	span.RecordError(testErr)
	span.SetStatus(codes.Error, "failed")
	span.End()

	_ = tp.ForceFlush(ctx)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", s.Status().Code)
	}

	// Check that error was recorded as an event
	events := s.Events()
	foundError := false
	for _, e := range events {
		if e.Name == "exception" {
			foundError = true
		}
	}
	if !foundError {
		t.Error("expected error event to be recorded")
	}
}

func TestTracingContext(t *testing.T) {
	ctx := context.Background()
	if got := TracingFrom(ctx); got != nil {
		t.Error("tracing should be off without --otel")
	}

	tracing := &Tracing{}
	ctx = WithTracing(ctx, tracing)
	if got := TracingFrom(ctx); got != tracing {
		t.Error("expected the stored tracing back")
	}
}

func TestEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	if got := endpoint(Config{Protocol: ProtocolHTTP}); got != "http://localhost:4318" {
		t.Errorf("http default = %q", got)
	}
	if got := endpoint(Config{Protocol: ProtocolGRPC}); got != "localhost:4317" {
		t.Errorf("grpc default = %q", got)
	}

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	if got := endpoint(Config{Protocol: ProtocolHTTP}); got != "http://collector:4318" {
		t.Errorf("env endpoint = %q", got)
	}
	if got := endpoint(Config{Endpoint: "otel.internal:4317", Protocol: ProtocolGRPC}); got != "otel.internal:4317" {
		t.Errorf("flag should win over env, got %q", got)
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		if got := newSampler(tt.ratio).Description(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("newSampler(%v) = %s, want %s", tt.ratio, got, tt.want)
		}
	}
}

func TestStartCommand(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx := WithTracing(context.Background(), FromProvider(tp))

	_, end := StartCommand(ctx, "to-server", attribute.String("policyconv.policy_id", "p-1"))
	end(nil)

	_, end = StartCommand(ctx, "validate")
	end(errors.New("rule failed"))

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "policyconv.to-server" || spans[0].Status().Code != codes.Ok {
		t.Errorf("first span = %q %v", spans[0].Name(), spans[0].Status().Code)
	}
	var foundPolicy bool
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "policyconv.policy_id" && attr.Value.AsString() == "p-1" {
			foundPolicy = true
		}
	}
	if !foundPolicy {
		t.Error("missing policyconv.policy_id attribute")
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("second span status = %v, want Error", spans[1].Status().Code)
	}
}

func TestStartCommand_Disabled(t *testing.T) {
	ctx := context.Background()
	got, end := StartCommand(ctx, "roundtrip")
	if got != ctx {
		t.Error("context should be unchanged when tracing is off")
	}
	end(errors.New("ignored"))
}

func TestParseHeaders(t *testing.T) {
	h, err := ParseHeaders([]string{"authorization=Bearer abc=", " x-team =core"})
	if err != nil {
		t.Fatalf("ParseHeaders: %v", err)
	}
	if h["authorization"] != "Bearer abc=" || h["x-team"] != "core" {
		t.Errorf("headers = %v", h)
	}

	if _, err := ParseHeaders([]string{"novalue"}); err == nil {
		t.Error("expected error for missing =")
	}
	if h, _ := ParseHeaders(nil); h != nil {
		t.Error("no pairs should give nil map")
	}
}
