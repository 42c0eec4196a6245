package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	// ErrLabelCountMismatch is returned when label values do not match the declared label names.
	ErrLabelCountMismatch = errors.New("label count mismatch")

	// ErrNegativeCounterValue is returned when a counter would decrease.
	ErrNegativeCounterValue = errors.New("counter cannot be decreased")

	// ErrDuplicateMetric is the panic value prefix for a name registered twice.
	ErrDuplicateMetric = errors.New("duplicate metric name")
)

// MetricType is the Prometheus TYPE of a metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is implemented by every metric kind.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	Collect() []Sample
}

// Sample is one exposed line.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// float64 stored as bits for lock-free updates.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 { return math.Float64frombits(a.bits.Load()) }

func (a *atomicFloat64) Store(v float64) { a.bits.Store(math.Float64bits(v)) }

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		if a.bits.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+delta)) {
			return
		}
	}
}

// family holds the labeled series of one metric.
type family[T any] struct {
	name       string
	help       string
	labelNames []string
	create     func() *T

	mu     sync.RWMutex
	series map[string]*series[T]
}

type series[T any] struct {
	key    string
	labels map[string]string
	value  *T
}

func (f *family[T]) init(name, help string, labelNames []string, create func() *T) {
	f.name = name
	f.help = help
	f.labelNames = labelNames
	f.create = create
	f.series = make(map[string]*series[T])
}

func (f *family[T]) Name() string { return f.name }

func (f *family[T]) Help() string { return f.help }

func (f *family[T]) get(values []string) (*T, error) {
	if len(values) != len(f.labelNames) {
		return nil, fmt.Errorf("%w: %s expected %d labels, got %d",
			ErrLabelCountMismatch, f.name, len(f.labelNames), len(values))
	}
	key := strings.Join(values, "\x00")

	f.mu.RLock()
	s, ok := f.series[key]
	f.mu.RUnlock()
	if ok {
		return s.value, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.series[key]; ok {
		return s.value, nil
	}
	labels := make(map[string]string, len(values))
	for i, n := range f.labelNames {
		labels[n] = values[i]
	}
	s = &series[T]{key: key, labels: labels, value: f.create()}
	f.series[key] = s
	return s.value, nil
}

// sorted returns a snapshot of the series ordered by label values.
func (f *family[T]) sorted() []*series[T] {
	f.mu.RLock()
	out := make([]*series[T], 0, len(f.series))
	for _, s := range f.series {
		out = append(out, s)
	}
	f.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Counter only increases.
type Counter struct {
	family[atomicFloat64]
}

func newCounter(name, help string, labelNames []string) *Counter {
	c := &Counter{}
	c.init(name, help, labelNames, func() *atomicFloat64 { return &atomicFloat64{} })
	return c
}

// Type returns MetricTypeCounter.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// Inc adds one to the series identified by labels.
func (c *Counter) Inc(labels ...string) error {
	return c.Add(1, labels...)
}

// Add adds delta to the series identified by labels.
func (c *Counter) Add(delta float64, labels ...string) error {
	if delta < 0 {
		return ErrNegativeCounterValue
	}
	v, err := c.get(labels)
	if err != nil {
		return err
	}
	v.Add(delta)
	return nil
}

// Value returns the current value of a series, or 0.
func (c *Counter) Value(labels ...string) float64 {
	v, err := c.get(labels)
	if err != nil {
		return 0
	}
	return v.Load()
}

// Collect implements Metric.
func (c *Counter) Collect() []Sample {
	var out []Sample
	for _, s := range c.sorted() {
		out = append(out, Sample{Name: c.name, Labels: s.labels, Value: s.value.Load()})
	}
	return out
}

// Gauge goes up and down.
type Gauge struct {
	family[atomicFloat64]
}

func newGauge(name, help string, labelNames []string) *Gauge {
	g := &Gauge{}
	g.init(name, help, labelNames, func() *atomicFloat64 { return &atomicFloat64{} })
	return g
}

// Type returns MetricTypeGauge.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// Set stores value in the series identified by labels.
func (g *Gauge) Set(value float64, labels ...string) error {
	v, err := g.get(labels)
	if err != nil {
		return err
	}
	v.Store(value)
	return nil
}

// Add adds delta (which may be negative).
func (g *Gauge) Add(delta float64, labels ...string) error {
	v, err := g.get(labels)
	if err != nil {
		return err
	}
	v.Add(delta)
	return nil
}

// Value returns the current value of a series, or 0.
func (g *Gauge) Value(labels ...string) float64 {
	v, err := g.get(labels)
	if err != nil {
		return 0
	}
	return v.Load()
}

// Collect implements Metric.
func (g *Gauge) Collect() []Sample {
	var out []Sample
	for _, s := range g.sorted() {
		out = append(out, Sample{Name: g.name, Labels: s.labels, Value: s.value.Load()})
	}
	return out
}

// Histogram counts observations into cumulative buckets.
type Histogram struct {
	family[histogramValue]
	buckets []float64
}

type histogramValue struct {
	counts []atomic.Uint64
	sum    atomicFloat64
	count  atomic.Uint64
}

func newHistogram(name, help string, buckets []float64, labelNames []string) *Histogram {
	bounds := append([]float64(nil), buckets...)
	sort.Float64s(bounds)
	if len(bounds) == 0 || !math.IsInf(bounds[len(bounds)-1], 1) {
		bounds = append(bounds, math.Inf(1))
	}
	h := &Histogram{buckets: bounds}
	h.init(name, help, labelNames, func() *histogramValue {
		return &histogramValue{counts: make([]atomic.Uint64, len(bounds))}
	})
	return h
}

// Type returns MetricTypeHistogram.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// Observe records value in the series identified by labels.
func (h *Histogram) Observe(value float64, labels ...string) error {
	v, err := h.get(labels)
	if err != nil {
		return err
	}
	i := sort.SearchFloat64s(h.buckets, value)
	v.counts[i].Add(1)
	v.sum.Add(value)
	v.count.Add(1)
	return nil
}

// Count returns the number of observations of a series.
func (h *Histogram) Count(labels ...string) uint64 {
	v, err := h.get(labels)
	if err != nil {
		return 0
	}
	return v.count.Load()
}

// Collect implements Metric.
func (h *Histogram) Collect() []Sample {
	var out []Sample
	for _, s := range h.sorted() {
		var cumulative uint64
		for i, bound := range h.buckets {
			cumulative += s.value.counts[i].Load()
			labels := make(map[string]string, len(s.labels)+1)
			for k, v := range s.labels {
				labels[k] = v
			}
			labels["le"] = formatFloat(bound)
			out = append(out, Sample{Name: h.name + "_bucket", Labels: labels, Value: float64(cumulative)})
		}
		out = append(out,
			Sample{Name: h.name + "_sum", Labels: s.labels, Value: s.value.sum.Load()},
			Sample{Name: h.name + "_count", Labels: s.labels, Value: float64(s.value.count.Load())},
		)
	}
	return out
}

// Registry holds metrics and serves them.
type Registry struct {
	mu       sync.RWMutex
	metrics  []Metric
	names    map[string]struct{}
	onScrape []func()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter registers a counter.
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	c := newCounter(name, help, labels)
	r.register(c)
	return c
}

// NewGauge registers a gauge.
func (r *Registry) NewGauge(name, help string, labels ...string) *Gauge {
	g := newGauge(name, help, labels)
	r.register(g)
	return g
}

// NewHistogram registers a histogram with the given upper bounds.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	h := newHistogram(name, help, buckets, labels)
	r.register(h)
	return h
}

// OnScrape runs fn before every exposition.
func (r *Registry) OnScrape(fn func()) {
	r.mu.Lock()
	r.onScrape = append(r.onScrape, fn)
	r.mu.Unlock()
}

// register panics on a duplicate name: the exposition would be invalid.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[m.Name()]; ok {
		panic(fmt.Sprintf("%s: %s", ErrDuplicateMetric, m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// Handler serves the registry in text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.WriteText(w)
	})
}

// WriteText writes every metric with at least one sample in Prometheus text
// format.
func (r *Registry) WriteText(w io.Writer) {
	r.mu.RLock()
	hooks := append([]func(){}, r.onScrape...)
	metrics := append([]Metric(nil), r.metrics...)
	r.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
	for _, m := range metrics {
		samples := m.Collect()
		if len(samples) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", m.Name(), escapeHelp(m.Help()))
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", m.Name(), m.Type())
		for _, s := range samples {
			if len(s.Labels) == 0 {
				_, _ = fmt.Fprintf(w, "%s %s\n", s.Name, formatFloat(s.Value))
				continue
			}
			_, _ = fmt.Fprintf(w, "%s{%s} %s\n", s.Name, formatLabels(s.Labels), formatFloat(s.Value))
		}
	}
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escapeLabelValue(labels[k]))
		b.WriteByte('"')
	}
	return b.String()
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var (
	helpEscaper  = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
)

func escapeHelp(s string) string { return helpEscaper.Replace(s) }

func escapeLabelValue(s string) string { return labelEscaper.Replace(s) }

// DefaultBuckets are request-duration bounds in seconds.
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
