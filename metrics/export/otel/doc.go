// Package otel publishes phoneAuth engine metrics through an OpenTelemetry
// meter.
//
// [NewExporter] registers an Int64ObservableCounter for each engine counter
// and an Int64ObservableGauge per latency bucket. One callback reads the
// engine snapshot on each collection cycle. Callers own the MeterProvider.
package otel
