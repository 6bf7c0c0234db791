package telemetry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/infrastructure/config"
)

// FromConfig maps the application telemetry section onto the provider config.
func FromConfig(c config.TelemetryConfig) Config {
	return Config{
		ServiceName:    c.ServiceName,
		Endpoint:       c.OTLPEndpoint,
		Insecure:       c.Insecure,
		MetricsEnabled: c.MetricsEnabled,
		TracingEnabled: c.TracingEnabled,
		LogsEnabled:    c.LogsEnabled,
		SamplingRatio:  c.SamplingRatio,
		ExportInterval: c.ExportInterval,
	}
}

// Providers bundles the three signal pipelines so they start and stop together.
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
	Logs   *LoggerProvider
}

// Setup starts every enabled pipeline. Pipelines already started are shut down if a later one fails.
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Providers, error) {
	p := &Providers{}
	var err error

	if p.Tracer, err = NewTracerProvider(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if p.Meter, err = NewMeterProvider(ctx, cfg, logger); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	if p.Logs, err = NewLoggerProvider(ctx, cfg); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	return p, nil
}

// Shutdown stops every pipeline and reports all failures.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Logs.Shutdown(ctx),
		p.Meter.Shutdown(ctx),
		p.Tracer.Shutdown(ctx),
	)
}
