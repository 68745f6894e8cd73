package observability

import "go.opentelemetry.io/otel/metric/noop"

// NopMetrics returns instruments that record nothing. Tests and disabled
// telemetry use it.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}
