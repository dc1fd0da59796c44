// Package window maintains the bounded, throttled sample buffer backing
// the telemetry display. The window is a display-rate view of the stream,
// not a full log: under a high-frequency producer samples are dropped
// from the window, never from delivery order.
package window

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/fusionstream/config"
	"github.com/c360/fusionstream/metric"
	"github.com/c360/fusionstream/pkg/ring"
	"github.com/c360/fusionstream/telemetry"
)

// Buffer turns the unbounded push stream into a fixed-size, display-ready
// window of recent samples. Ingestion is throttled by the wall-clock gap
// since the last accepted sample; in a tight burst this keeps the first
// sample of the burst, which is the source behavior being preserved.
type Buffer struct {
	mu           sync.Mutex
	ring         *ring.Ring[telemetry.Sample]
	minInterval  time.Duration
	lastAccepted time.Time

	accepted  atomic.Int64
	throttled atomic.Int64

	// now is injectable for deterministic throttle tests.
	now func() time.Time

	metrics *Metrics
}

// Metrics holds Prometheus metrics for the window buffer
type Metrics struct {
	depth     prometheus.Gauge
	accepted  prometheus.Counter
	throttled prometheus.Counter
}

func newMetrics(registry *metric.Registry, componentName string) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fusionstream",
			Subsystem: "window",
			Name:      "depth",
			Help:      "Current number of samples in the display window",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "window",
			Name:      "samples_accepted_total",
			Help:      "Samples accepted into the display window",
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "window",
			Name:      "samples_throttled_total",
			Help:      "Samples dropped by ingestion throttling",
		}),
	}

	registry.RegisterGauge(componentName, "depth", m.depth)
	registry.RegisterCounter(componentName, "accepted", m.accepted)
	registry.RegisterCounter(componentName, "throttled", m.throttled)

	return m
}

// New creates a window buffer. registry may be nil to disable metrics.
func New(cfg config.WindowConfig, registry *metric.Registry) *Buffer {
	size := cfg.Size
	if size <= 0 {
		size = 100
	}

	return &Buffer{
		ring:        ring.New[telemetry.Sample](size),
		minInterval: cfg.MinInterval,
		now:         time.Now,
		metrics:     newMetrics(registry, "window"),
	}
}

// Ingest offers one validated sample to the window. It reports whether the
// sample was accepted; samples arriving sooner than the minimum interval
// after the last accepted sample are dropped from the window.
func (b *Buffer) Ingest(sample *telemetry.Sample) bool {
	b.mu.Lock()

	now := b.now()
	if b.minInterval > 0 && !b.lastAccepted.IsZero() && now.Sub(b.lastAccepted) < b.minInterval {
		b.mu.Unlock()
		b.throttled.Add(1)
		if b.metrics != nil {
			b.metrics.throttled.Inc()
		}
		return false
	}

	b.lastAccepted = now
	b.ring.Append(*sample)
	depth := b.ring.Len()
	b.mu.Unlock()

	b.accepted.Add(1)
	if b.metrics != nil {
		b.metrics.accepted.Inc()
		b.metrics.depth.Set(float64(depth))
	}
	return true
}

// Snapshot returns the window contents as an immutable ordered copy,
// oldest first. The internal sequence never escapes.
func (b *Buffer) Snapshot() []telemetry.Sample {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.Snapshot()
}

// Latest returns the most recently accepted sample, or nil when empty.
func (b *Buffer) Latest() *telemetry.Sample {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := b.ring.Snapshot()
	if len(snap) == 0 {
		return nil
	}
	latest := snap[len(snap)-1]
	return &latest
}

// Len returns the current number of samples in the window.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.Len()
}

// Cap returns the window capacity.
func (b *Buffer) Cap() int {
	return b.ring.Cap()
}

// Accepted returns the number of samples accepted into the window.
func (b *Buffer) Accepted() int64 { return b.accepted.Load() }

// Throttled returns the number of samples dropped by throttling.
func (b *Buffer) Throttled() int64 { return b.throttled.Load() }

// Stats is a point-in-time snapshot of window activity. Evicted counts
// samples pushed out by capacity, not by throttling.
type Stats struct {
	Accepted  int64 `json:"accepted"`
	Throttled int64 `json:"throttled"`
	Evicted   int64 `json:"evicted"`
	Depth     int   `json:"depth"`
	Capacity  int   `json:"capacity"`
}

// Stats returns a snapshot of window activity counters.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	depth := b.ring.Len()
	b.mu.Unlock()

	return Stats{
		Accepted:  b.accepted.Load(),
		Throttled: b.throttled.Load(),
		Evicted:   b.ring.Stats().Drops(),
		Depth:     depth,
		Capacity:  b.ring.Cap(),
	}
}
