// Package metrics implements Prometheus text exposition (version 0.0.4) for
// the host server.
//
// Counters, gauges and histograms are grouped in a Registry whose Handler
// serves the /metrics endpoint. Series are written in sorted label order so
// scrapes are stable.
//
// # Default Metrics
//
//   - mph_requests_total: requests answered (labels: backend, status)
//   - mph_request_duration_seconds: request latency (labels: backend)
//   - mph_backends_loaded: backends registered at startup
//   - mph_backend_skips_total: descriptors skipped while loading (labels: reason)
//   - mph_mount_dispatch_total: sub-application dispatches (labels: backend, outcome)
//   - mph_uptime_seconds, go_goroutines, go_info: refreshed on every scrape
//
// The backend label is the backend identifier, or "host" for the host's own
// routes. Usage:
//
//	reg := metrics.Init()
//	metrics.RequestsTotal.Inc("docs", "200")
//	mux.Handle("GET /metrics", reg.Handler())
package metrics
