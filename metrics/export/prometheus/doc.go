// Package prometheus renders phoneAuth engine metrics in Prometheus text
// exposition format.
//
// [NewExporter] wraps an engine and exposes an [http.Handler] for the scrape
// endpoint. Counters are named phoneauth_*_total and each flow latency
// histogram phoneauth_*_latency_seconds. Nothing is registered in a global
// registry; callers mount the handler.
package prometheus
