// Package otel provides OpenTelemetry instrumentation for passproxy.
// Tracer setup is a stub: spans and metrics are recorded through the global
// providers, so wiring an exporter is a deployment concern, not a code one.
package otel

import (
	"context"
	"log/slog"
)

// ShutdownFunc is called to flush and shut down the trace provider.
type ShutdownFunc func(ctx context.Context) error

// InitTracer returns a no-op shutdown function. Deployments that install an
// SDK trace provider pick up the instrumentation automatically.
func InitTracer(serviceName string) ShutdownFunc {
	slog.Info("otel: using global providers", "service", serviceName)
	return func(_ context.Context) error {
		return nil
	}
}
