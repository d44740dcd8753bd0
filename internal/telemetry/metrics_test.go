package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGetMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	m := GetMetrics()
	require.Same(t, m, GetMetrics())

	ctx := context.Background()
	m.BuildsTotal.Add(ctx, 2)
	m.OutputBytesTotal.Add(ctx, 1024)
	m.BuildDuration.Record(ctx, 12.5)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Equal(t, instrumentationName, rm.ScopeMetrics[0].Scope.Name)

	names := map[string]bool{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		names[metric.Name] = true
	}
	require.True(t, names["litbundle.builds.total"])
	require.True(t, names["litbundle.output.bytes.total"])
	require.True(t, names["litbundle.builds.duration"])
}
