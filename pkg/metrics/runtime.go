package metrics

import (
	"runtime"
	"time"
)

// RuntimeCollector exposes a few Go runtime gauges, refreshed on scrape.
type RuntimeCollector struct {
	goroutines *Gauge
	heapAlloc  *Gauge
	numGC      *Gauge
	uptime     *Gauge
	start      time.Time
}

// NewRuntimeCollector registers the runtime gauges on r and hooks Collect
// into every scrape. uptime may be nil.
func NewRuntimeCollector(r *Registry, uptime *Gauge) *RuntimeCollector {
	rc := &RuntimeCollector{
		goroutines: r.NewGauge("go_goroutines", "Number of goroutines that currently exist"),
		heapAlloc:  r.NewGauge("go_memstats_heap_alloc_bytes", "Number of heap bytes allocated and still in use"),
		numGC:      r.NewGauge("go_gc_cycles_total", "Total number of completed GC cycles"),
		uptime:     uptime,
		start:      time.Now(),
	}
	info := r.NewGauge("go_info", "Information about the Go environment", "version")
	_ = info.Set(1, runtime.Version())
	r.OnScrape(rc.Collect)
	return rc
}

// Collect refreshes the gauges.
func (rc *RuntimeCollector) Collect() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	if rc.uptime != nil {
		_ = rc.uptime.Set(time.Since(rc.start).Seconds())
	}
	_ = rc.goroutines.Set(float64(runtime.NumGoroutine()))
	_ = rc.heapAlloc.Set(float64(mem.HeapAlloc))
	_ = rc.numGC.Set(float64(mem.NumGC))
}
