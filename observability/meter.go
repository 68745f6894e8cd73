package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, cfg Config, res Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	r, err := newResource(res)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(r),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns the service meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the render service instruments.
type Metrics struct {
	renderTotal     metric.Int64Counter
	renderDuration  metric.Float64Histogram
	renderInFlight  metric.Int64UpDownCounter
	artifactBytes   metric.Int64Histogram
	rejectedTotal   metric.Int64Counter
	sweptTotal      metric.Int64Counter
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.renderTotal, err = meter.Int64Counter("render.total",
		metric.WithDescription("Render attempts by format and outcome")); err != nil {
		return nil, fmt.Errorf("creating render.total counter: %w", err)
	}
	if m.renderDuration, err = meter.Float64Histogram("render.duration",
		metric.WithDescription("Render pipeline duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating render.duration histogram: %w", err)
	}
	if m.renderInFlight, err = meter.Int64UpDownCounter("render.in_flight",
		metric.WithDescription("Renderer subprocesses currently running")); err != nil {
		return nil, fmt.Errorf("creating render.in_flight counter: %w", err)
	}
	if m.artifactBytes, err = meter.Int64Histogram("render.artifact.size",
		metric.WithDescription("Size of rendered artifacts"), metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("creating render.artifact.size histogram: %w", err)
	}
	if m.rejectedTotal, err = meter.Int64Counter("render.rejected",
		metric.WithDescription("Requests turned away by capacity limits")); err != nil {
		return nil, fmt.Errorf("creating render.rejected counter: %w", err)
	}
	if m.sweptTotal, err = meter.Int64Counter("workspace.swept",
		metric.WithDescription("Stale workspace files removed by the sweeper")); err != nil {
		return nil, fmt.Errorf("creating workspace.swept counter: %w", err)
	}
	if m.requestTotal, err = meter.Int64Counter("http.request.total",
		metric.WithDescription("HTTP requests by route and status")); err != nil {
		return nil, fmt.Errorf("creating http.request.total counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("http.request.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating http.request.duration histogram: %w", err)
	}
	return &m, nil
}

// NewGlobalMetrics creates instruments on the global meter. It falls back
// to no-op instruments if creation fails.
func NewGlobalMetrics() *Metrics {
	m, err := NewMetrics(Meter())
	if err != nil {
		return NopMetrics()
	}
	return m
}

// RenderStarted marks a renderer invocation as running.
func (m *Metrics) RenderStarted(ctx context.Context) {
	m.renderInFlight.Add(ctx, 1)
}

// RenderFinished records a completed pipeline run. status is "ok" or an error code.
func (m *Metrics) RenderFinished(ctx context.Context, format, status string, size int, d time.Duration) {
	m.renderInFlight.Add(ctx, -1)
	m.renderTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	))
	m.renderDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("format", format)))
	if size > 0 {
		m.artifactBytes.Record(ctx, int64(size), metric.WithAttributes(attribute.String("format", format)))
	}
}

// RecordRejection counts a request refused for capacity.
func (m *Metrics) RecordRejection(ctx context.Context, reason string) {
	m.rejectedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordSweep counts files removed by a sweep pass.
func (m *Metrics) RecordSweep(ctx context.Context, removed, failed int) {
	if removed > 0 {
		m.sweptTotal.Add(ctx, int64(removed), metric.WithAttributes(attribute.String("result", "removed")))
	}
	if failed > 0 {
		m.sweptTotal.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("result", "failed")))
	}
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
