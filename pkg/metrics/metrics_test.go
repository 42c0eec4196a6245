package metrics

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	r := NewRegistry()
	c := r.NewCounter("hits_total", "Hits", "backend", "status")

	require.NoError(t, c.Inc("docs", "200"))
	require.NoError(t, c.Inc("docs", "200"))
	require.NoError(t, c.Add(5, "apps", "404"))

	assert.Equal(t, 2.0, c.Value("docs", "200"))
	assert.Equal(t, 5.0, c.Value("apps", "404"))

	samples := c.Collect()
	require.Len(t, samples, 2)
	assert.Equal(t, "apps", samples[0].Labels["backend"])

	assert.ErrorIs(t, c.Inc("only-one"), ErrLabelCountMismatch)
	assert.ErrorIs(t, c.Add(-1, "docs", "200"), ErrNegativeCounterValue)
}

func TestGauge(t *testing.T) {
	r := NewRegistry()
	g := r.NewGauge("loaded", "Loaded")

	require.NoError(t, g.Set(3))
	require.NoError(t, g.Add(-1))
	assert.Equal(t, 2.0, g.Value())
	assert.ErrorIs(t, g.Set(1, "extra"), ErrLabelCountMismatch)
}

func TestHistogram(t *testing.T) {
	r := NewRegistry()
	h := r.NewHistogram("latency_seconds", "Latency", []float64{1, 0.1}, "backend")

	require.NoError(t, h.Observe(0.05, "docs"))
	require.NoError(t, h.Observe(0.1, "docs"))
	require.NoError(t, h.Observe(3, "docs"))
	assert.Equal(t, uint64(3), h.Count("docs"))

	var buckets []float64
	for _, s := range h.Collect() {
		if s.Name == "latency_seconds_bucket" {
			buckets = append(buckets, s.Value)
		}
	}
	assert.Equal(t, []float64{2, 2, 3}, buckets)
}

func TestDuplicateMetricPanics(t *testing.T) {
	r := NewRegistry()
	r.NewCounter("dup", "first")
	assert.Panics(t, func() { r.NewGauge("dup", "second") })
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	c := r.NewCounter("mph_test_total", "Test \"counter\"\nwith newline", "path")
	r.NewGauge("unused", "Never set")
	require.NoError(t, c.Inc(`a"b\c`))

	scraped := 0
	r.OnScrape(func() { scraped++ })

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, "text/plain; version=0.0.4; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "# HELP mph_test_total Test \"counter\"\\nwith newline\n")
	assert.Contains(t, body, "# TYPE mph_test_total counter\n")
	assert.Contains(t, body, `mph_test_total{path="a\"b\\c"} 1`+"\n")
	assert.NotContains(t, body, "unused")
	assert.Equal(t, 1, scraped)
}

func TestConcurrentUpdates(t *testing.T) {
	r := NewRegistry()
	c := r.NewCounter("concurrent_total", "Concurrent", "worker")
	h := r.NewHistogram("concurrent_seconds", "Concurrent", DefaultBuckets)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Inc("w")
				_ = h.Observe(0.01)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800.0, c.Value("w"))
	assert.Equal(t, uint64(800), h.Count())
}

func TestDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	ObserveRequest("docs", 200, 0.01)
	RecordSkip("duplicate")

	reg := Init()
	assert.Same(t, reg, Init())
	assert.Same(t, reg, DefaultRegistry())

	ObserveRequest("docs", 200, 0.01)
	RecordSkip("duplicate")
	RecordDispatch("apps", "no_route")
	SetBackendsLoaded(2)

	var b strings.Builder
	reg.WriteText(&b)
	out := b.String()
	assert.Contains(t, out, `mph_requests_total{backend="docs",status="200"} 1`)
	assert.Contains(t, out, `mph_backend_skips_total{reason="duplicate"} 1`)
	assert.Contains(t, out, `mph_mount_dispatch_total{backend="apps",outcome="no_route"} 1`)
	assert.Contains(t, out, "mph_backends_loaded 2\n")
	assert.Contains(t, out, "go_goroutines ")
	assert.Contains(t, out, "mph_uptime_seconds ")
}
