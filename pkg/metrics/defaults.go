package metrics

import (
	"strconv"
	"sync"
)

// Default host metrics, created by Init.
var (
	// RequestsTotal counts answered requests. Labels: backend, status.
	RequestsTotal *Counter

	// RequestDuration observes request latency in seconds. Labels: backend.
	RequestDuration *Histogram

	// BackendsLoaded is the number of backends registered at startup.
	BackendsLoaded *Gauge

	// BackendSkipsTotal counts descriptors skipped while loading. Labels: reason.
	BackendSkipsTotal *Counter

	// MountDispatchTotal counts sub-application dispatches. Labels: backend, outcome
	// (ok, no_route, not_found, load_error, app_error, panic).
	MountDispatchTotal *Counter

	// UptimeSeconds is refreshed on every scrape.
	UptimeSeconds *Gauge

	// Runtime is the runtime collector attached to the default registry.
	Runtime *RuntimeCollector

	defaultRegistry *Registry
	initOnce        sync.Once
	initMu          sync.Mutex
)

// Init creates the default registry and metrics. It is idempotent.
func Init() *Registry {
	initMu.Lock()
	defer initMu.Unlock()
	initOnce.Do(func() {
		r := NewRegistry()
		RequestsTotal = r.NewCounter("mph_requests_total", "Total number of requests answered", "backend", "status")
		RequestDuration = r.NewHistogram("mph_request_duration_seconds", "Duration of requests in seconds", DefaultBuckets, "backend")
		BackendsLoaded = r.NewGauge("mph_backends_loaded", "Number of backends registered at startup")
		BackendSkipsTotal = r.NewCounter("mph_backend_skips_total", "Backend descriptors skipped while loading", "reason")
		MountDispatchTotal = r.NewCounter("mph_mount_dispatch_total", "Sub-application dispatches by outcome", "backend", "outcome")
		UptimeSeconds = r.NewGauge("mph_uptime_seconds", "Server uptime in seconds")
		Runtime = NewRuntimeCollector(r, UptimeSeconds)
		defaultRegistry = r
	})
	return defaultRegistry
}

// DefaultRegistry returns the registry created by Init, or nil.
func DefaultRegistry() *Registry {
	initMu.Lock()
	defer initMu.Unlock()
	return defaultRegistry
}

// Reset discards the default metrics so tests can start clean.
func Reset() {
	initMu.Lock()
	defer initMu.Unlock()
	initOnce = sync.Once{}
	defaultRegistry = nil
	RequestsTotal = nil
	RequestDuration = nil
	BackendsLoaded = nil
	BackendSkipsTotal = nil
	MountDispatchTotal = nil
	UptimeSeconds = nil
	Runtime = nil
}

// Helpers below are no-ops before Init so packages can record
// unconditionally.

// ObserveRequest records one answered request.
func ObserveRequest(backend string, status int, seconds float64) {
	if RequestsTotal == nil {
		return
	}
	_ = RequestsTotal.Inc(backend, strconv.Itoa(status))
	_ = RequestDuration.Observe(seconds, backend)
}

// RecordSkip counts one skipped descriptor.
func RecordSkip(reason string) {
	if BackendSkipsTotal != nil {
		_ = BackendSkipsTotal.Inc(reason)
	}
}

// SetBackendsLoaded sets the loaded backend gauge.
func SetBackendsLoaded(n int) {
	if BackendsLoaded != nil {
		_ = BackendsLoaded.Set(float64(n))
	}
}

// RecordDispatch counts one sub-application dispatch.
func RecordDispatch(backend, outcome string) {
	if MountDispatchTotal != nil {
		_ = MountDispatchTotal.Inc(backend, outcome)
	}
}
