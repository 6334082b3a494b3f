package otel

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	// ServiceName is the name of this service
	ServiceName = "track2geojson"
)

// Version is set at build time via -ldflags
// e.g., go build -ldflags="-X track2geojson/pkg/otel.Version=1.2.3"
var Version = "dev"

// serviceInstanceID prefers OTEL_SERVICE_INSTANCE_ID, then the hostname, then the process ID.
func serviceInstanceID() string {
	if id := os.Getenv("OTEL_SERVICE_INSTANCE_ID"); id != "" {
		return id
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return fmt.Sprintf("%s-%d", ServiceName, os.Getpid())
}

// NewResource creates the resource shared by the tracing and metrics providers.
// extra is appended after the standard attributes, e.g. the run ID of a conversion.
func NewResource(extra ...attribute.KeyValue) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(Version),
		semconv.ServiceNamespace(getEnv("OTEL_SERVICE_NAMESPACE", "geo-tracking")),
		semconv.ServiceInstanceID(serviceInstanceID()),
		semconv.DeploymentEnvironment(getEnv("OTEL_DEPLOYMENT_ENVIRONMENT", "production")),

		semconv.ProcessRuntimeName("go"),
		semconv.ProcessRuntimeVersion(runtime.Version()),
		semconv.ProcessPID(os.Getpid()),

		semconv.TelemetrySDKName("opentelemetry"),
		semconv.TelemetrySDKLanguageGo,
	}
	attrs = append(attrs, extra...)

	return resource.New(context.Background(),
		// OTEL_SERVICE_NAME and OTEL_RESOURCE_ATTRIBUTES
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithProcess(),
		resource.WithAttributes(attrs...),
	)
}
