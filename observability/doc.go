// Package observability wires OpenTelemetry tracing and metrics into the
// render service.
//
// When disabled (the default) the global no-op providers stay in place and
// every span and instrument costs nothing. When enabled, traces and metrics
// are exported over OTLP/HTTP.
//
//	obs := observability.NewComponent(cfg.Observability, "diagramd", version.GetVersionInfo().Version, "production", log)
//	app.RegisterComponent(obs)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanRenderPipeline)
//	defer span.End()
package observability
