package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Small, dependency-free metrics with Prometheus text exposition.
// Values are atomics; the registry maps are mutex-protected.

// Counter is a monotonically increasing number.
type Counter struct {
	name string
	help string
	val  atomic.Int64
}

func (c *Counter) Inc()            { c.val.Add(1) }
func (c *Counter) Add(delta int64) { c.val.Add(delta) }
func (c *Counter) Get() int64      { return c.val.Load() }

// Gauge is a float64 that can go up and down.
type Gauge struct {
	name string
	help string
	bits atomic.Uint64
}

func (g *Gauge) Set(v float64) { g.bits.Store(math.Float64bits(v)) }
func (g *Gauge) Get() float64  { return math.Float64frombits(g.bits.Load()) }

// Histogram counts observations into fixed upper-bound buckets. The last
// bucket is always +Inf.
type Histogram struct {
	name    string
	help    string
	buckets []float64
	counts  []atomic.Uint64
	count   atomic.Uint64
	sumBits atomic.Uint64
}

func (h *Histogram) Observe(v float64) {
	i := sort.SearchFloat64s(h.buckets, v)
	if i >= len(h.buckets) {
		i = len(h.buckets) - 1
	}
	h.counts[i].Add(1)
	h.count.Add(1)
	for {
		old := h.sumBits.Load()
		nv := math.Float64bits(math.Float64frombits(old) + v)
		if h.sumBits.CompareAndSwap(old, nv) {
			return
		}
	}
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 { return h.count.Load() }

// Sum returns the total of all observations.
func (h *Histogram) Sum() float64 { return math.Float64frombits(h.sumBits.Load()) }

// Registry holds all metrics.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Counter returns the named counter, creating it on first use.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{name: sanitize(name), help: help}
	r.counters[name] = c
	return c
}

// Gauge returns the named gauge, creating it on first use.
func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{name: sanitize(name), help: help}
	r.gauges[name] = g
	return g
}

// Histogram returns the named histogram. buckets are only used on creation.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	b := append([]float64{}, buckets...)
	sort.Float64s(b)
	if len(b) == 0 || !math.IsInf(b[len(b)-1], 1) {
		b = append(b, math.Inf(1))
	}
	h := &Histogram{name: sanitize(name), help: help, buckets: b, counts: make([]atomic.Uint64, len(b))}
	r.histograms[name] = h
	return h
}

// Expose writes every metric in Prometheus text format, sorted by name.
func (r *Registry) Expose(w io.Writer) {
	r.mu.RLock()
	counters := sortedValues(r.counters)
	gauges := sortedValues(r.gauges)
	histograms := sortedValues(r.histograms)
	r.mu.RUnlock()

	for _, c := range counters {
		header(w, c.name, c.help, "counter")
		fmt.Fprintf(w, "%s %d\n", c.name, c.Get())
	}
	for _, g := range gauges {
		header(w, g.name, g.help, "gauge")
		fmt.Fprintf(w, "%s %g\n", g.name, g.Get())
	}
	for _, h := range histograms {
		header(w, h.name, h.help, "histogram")
		var cum uint64
		for i, ub := range h.buckets {
			cum += h.counts[i].Load()
			le := "+Inf"
			if !math.IsInf(ub, 1) {
				le = fmt.Sprintf("%g", ub)
			}
			fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", h.name, le, cum)
		}
		fmt.Fprintf(w, "%s_sum %g\n", h.name, h.Sum())
		fmt.Fprintf(w, "%s_count %d\n", h.name, h.Count())
	}
}

// Handler returns an http.Handler that exposes metrics in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.Expose(w)
	})
}

// Handler exposes the Default registry.
func Handler() http.Handler { return Default.Handler() }

// Timer measures a duration into a histogram, in milliseconds.
type Timer struct {
	h     *Histogram
	start time.Time
}

func (h *Histogram) Start() Timer { return Timer{h: h, start: time.Now()} }

// Observe records the time since Start and returns it.
func (t Timer) Observe() time.Duration {
	d := time.Since(t.start)
	if t.h != nil {
		t.h.Observe(float64(d.Microseconds()) / 1000.0)
	}
	return d
}

func header(w io.Writer, name, help, typ string) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, strings.ReplaceAll(help, "\n", " "))
	fmt.Fprintf(w, "# TYPE %s %s\n", name, typ)
}

func sanitize(s string) string {
	return strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(s)
}

type named interface{ metricName() string }

func (c *Counter) metricName() string   { return c.name }
func (g *Gauge) metricName() string     { return g.name }
func (h *Histogram) metricName() string { return h.name }

func sortedValues[T named](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].metricName() < out[j].metricName() })
	return out
}
