package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/wolfeidau/litbundle"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	BuildsTotal      metric.Int64Counter
	BuildErrorsTotal metric.Int64Counter
	BuildDuration    metric.Float64Histogram
	OutputBytesTotal metric.Int64Counter
	SourcesRewritten metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// Tracer returns the tracer used for build spans.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"litbundle.builds.total",
		metric.WithDescription("Total number of bundler invocations"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"litbundle.builds.errors.total",
		metric.WithDescription("Total number of failed bundler invocations"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"litbundle.builds.duration",
		metric.WithDescription("Duration of bundler invocations"),
		metric.WithUnit("ms"),
	)

	m.OutputBytesTotal, _ = meter.Int64Counter(
		"litbundle.output.bytes.total",
		metric.WithDescription("Total number of bytes written to the output directory"),
		metric.WithUnit("By"),
	)

	m.SourcesRewritten, _ = meter.Int64Counter(
		"litbundle.sourcemap.sources_rewritten.total",
		metric.WithDescription("Total number of source map sources rewritten"),
		metric.WithUnit("{source}"),
	)

	return m
}
