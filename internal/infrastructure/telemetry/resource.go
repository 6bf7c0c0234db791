// Package telemetry wires OpenTelemetry traces, metrics and logs to an OTLP collector.
package telemetry

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const serviceVersion = "1.0.0"

// Config holds the collector settings shared by every signal.
type Config struct {
	ServiceName    string
	Endpoint       string
	Insecure       bool
	MetricsEnabled bool
	TracingEnabled bool
	LogsEnabled    bool
	SamplingRatio  float64
	ExportInterval time.Duration
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
