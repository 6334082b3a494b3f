package otel

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"track2geojson/pkg/types"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestEnabledFlags(t *testing.T) {
	t.Setenv("OTEL_TRACING_ENABLED", "yes")
	t.Setenv("OTEL_METRICS_ENABLED", "off")

	if !IsTracingEnabled() {
		t.Error("tracing should be enabled for \"yes\"")
	}
	if IsMetricsEnabled() {
		t.Error("metrics should be disabled for \"off\"")
	}
}

// clearOTLPEnv blanks variables that could leak in from the environment running the tests.
func clearOTLPEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT",
		"OTEL_EXPORTER_OTLP_PROTOCOL", "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "OTEL_EXPORTER_OTLP_METRICS_PROTOCOL",
		"OTEL_EXPORTER_OTLP_TIMEOUT", "OTEL_EXPORTER_OTLP_TRACES_TIMEOUT", "OTEL_EXPORTER_OTLP_METRICS_TIMEOUT",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_EXPORTER_OTLP_TRACES_INSECURE", "OTEL_EXPORTER_OTLP_METRICS_INSECURE",
		"OTEL_EXPORTER_OTLP_HEADERS", "OTEL_EXPORTER_OTLP_TRACES_HEADERS", "OTEL_EXPORTER_OTLP_METRICS_HEADERS",
	} {
		t.Setenv(key, "")
	}
}

func TestGetExporterConfig_Defaults(t *testing.T) {
	clearOTLPEnv(t)
	cfg := GetExporterConfig(SignalTraces)

	if cfg.Protocol != ProtocolHTTPProtobuf {
		t.Errorf("Protocol = %q, want %q", cfg.Protocol, ProtocolHTTPProtobuf)
	}
	if cfg.Endpoint != "http://localhost:4318/v1/traces" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if !cfg.Insecure {
		t.Error("http:// endpoint should be insecure")
	}
}

func TestGetExporterConfig_Overrides(t *testing.T) {
	clearOTLPEnv(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otlp.example.com/otlp")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "Authorization=Basic dXNlcjpwYXNz==, X-Scope=geo")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_TIMEOUT", "2500")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_PROTOCOL", "grpc")

	traces := GetExporterConfig(SignalTraces)
	if traces.Endpoint != "https://otlp.example.com/otlp/v1/traces" {
		t.Errorf("traces Endpoint = %q", traces.Endpoint)
	}
	if traces.Insecure {
		t.Error("https endpoint should not be insecure")
	}
	if traces.Headers["Authorization"] != "Basic dXNlcjpwYXNz==" || traces.Headers["X-Scope"] != "geo" {
		t.Errorf("Headers = %v", traces.Headers)
	}

	metrics := GetExporterConfig(SignalMetrics)
	if metrics.Protocol != ProtocolGRPC {
		t.Errorf("metrics Protocol = %q", metrics.Protocol)
	}
	if metrics.Endpoint != "otlp.example.com" {
		t.Errorf("gRPC endpoint should be host only, got %q", metrics.Endpoint)
	}
	if metrics.Timeout != 2500*time.Millisecond {
		t.Errorf("metrics Timeout = %v", metrics.Timeout)
	}
}

func TestRecordKindError(t *testing.T) {
	tests := []struct {
		err       error
		expected  string
		transient bool
	}{
		{fmt.Errorf("failed to read: %w", types.ErrIO), ErrorTypeIO, true},
		{&types.ParseError{Record: 3, Err: errors.New("bad")}, ErrorTypeParse, false},
		{fmt.Errorf("sample 4: %w", types.ErrDegenerateVector), ErrorTypeDegenerateVector, false},
		{types.ErrInsufficientData, ErrorTypeInsufficientData, false},
		{fmt.Errorf("invalid configuration: %w", types.ErrValidation), ErrorTypeValidation, false},
		{errors.New("boom"), ErrorTypeInternal, false},
	}

	for _, tt := range tests {
		recorder := tracetest.NewSpanRecorder()
		tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
		_, span := tp.Tracer("test").Start(t.Context(), "op")

		if got := RecordKindError(span, tt.err); got != tt.expected {
			t.Errorf("RecordKindError(%v) = %q, want %q", tt.err, got, tt.expected)
		}
		span.End()

		ended := recorder.Ended()
		if len(ended) != 1 || len(ended[0].Events()) != 1 {
			t.Fatalf("expected one span with one error event")
		}
		var transient, found bool
		for _, kv := range ended[0].Events()[0].Attributes {
			if kv.Key == "error.transient" {
				transient, found = kv.Value.AsBool(), true
			}
		}
		if !found || transient != tt.transient {
			t.Errorf("%v: error.transient = %v (found %v), want %v", tt.err, transient, found, tt.transient)
		}
	}
}

func TestParseHTTPEndpoint(t *testing.T) {
	host, path, err := parseHTTPEndpoint("https://otlp.example.com:4318/otlp/v1/metrics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "otlp.example.com:4318" || path != "/otlp/v1/metrics" {
		t.Errorf("host/path = %q/%q", host, path)
	}

	if _, _, err := parseHTTPEndpoint("localhost:4318"); err == nil {
		t.Error("expected error for an endpoint without scheme and host")
	}
}

func TestUseGzip(t *testing.T) {
	for compression, want := range map[string]bool{"gzip": true, "GZIP": true, "": false, "none": false, "zstd": false} {
		if got := useGzip(ExporterConfig{Compression: compression}); got != want {
			t.Errorf("useGzip(%q) = %v, want %v", compression, got, want)
		}
	}
}
