// Package otel binds session manager metrics to OpenTelemetry instruments.
//
// [NewExporter] registers an Int64ObservableCounter per counter and an
// Int64ObservableGauge per histogram bucket. A single callback reads
// [goAuthClient.Manager.MetricsSnapshot] on each collection cycle. Callers
// own the MeterProvider.
package otel
