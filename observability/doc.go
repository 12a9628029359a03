// Package observability wires OpenTelemetry tracing and metrics into
// kvbridge.
//
// Every bridge operation runs inside an Operation, which opens a
// "kvbridge.<op>" span and records operation.total, operation.duration and
// error.total:
//
//	ctx, op := observability.StartOperation(ctx, metrics, "query")
//	defer func() { op.End(ctx, err) }()
//
// Setup installs OTLP/HTTP exporters when telemetry is enabled:
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry)
//	defer shutdown(ctx)
package observability
