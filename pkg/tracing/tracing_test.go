package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracer_DisabledInstallsPropagatorOnly(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("storefront"))
	if err != nil {
		t.Fatalf("InitTracer(disabled) returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown(disabled) returned error: %v", err)
	}

	fields := otel.GetTextMapPropagator().Fields()
	if !contains(fields, "traceparent") {
		t.Errorf("propagator fields = %v, want traceparent", fields)
	}
}

func TestInitTracer_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// The exporter never connects during init; batched export is async.
	cfg := Config{
		ServiceName:    "storefront",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "127.0.0.1:0",
		SampleRate:     0.5,
		Enabled:        true,
	}

	shutdown, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer(enabled) returned error: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected *sdktrace.TracerProvider, got %T", otel.GetTracerProvider())
	}
	_ = shutdown(context.Background())
}

func TestSampler(t *testing.T) {
	cases := map[float64]string{
		1.0:  "AlwaysOnSampler",
		2.0:  "AlwaysOnSampler",
		0.0:  "AlwaysOffSampler",
		-1.0: "AlwaysOffSampler",
		0.25: "TraceIDRatioBased{0.25}",
	}
	for rate, want := range cases {
		desc := sampler(rate).Description()
		if !strings.HasPrefix(desc, "ParentBased{root:"+want) {
			t.Errorf("sampler(%v) = %q, want root %q", rate, desc, want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("storefront")
	if cfg.ServiceName != "storefront" || cfg.Enabled || cfg.SampleRate != 1.0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.OTLPEndpoint != "localhost:4318" {
		t.Errorf("OTLPEndpoint = %q", cfg.OTLPEndpoint)
	}
}

func TestRecordError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "catalog.fetch")
	RecordError(span, nil)
	RecordError(span, errors.New("dial tcp: refused"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error || spans[0].Status.Description != "dial tcp: refused" {
		t.Errorf("status = %+v", spans[0].Status)
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("events = %d, want 1 exception event", len(spans[0].Events))
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
