package observability

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// noopProvider implements Provider with no-op operations.
// Used when observability is disabled.
type noopProvider struct{}

func (noopProvider) TracerProvider() trace.TracerProvider { return noop.NewTracerProvider() }

func (noopProvider) MeterProvider() metric.MeterProvider { return metricnoop.NewMeterProvider() }

func (noopProvider) Shutdown(_ context.Context) error { return nil }

func (noopProvider) ForceFlush(_ context.Context) error { return nil }
