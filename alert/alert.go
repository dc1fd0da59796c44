// Package alert implements the anomaly alert state machine: at most one
// alert is current at a time, raised when the anomaly score crosses the
// configured threshold and retired by explicit dismissal or expiry.
package alert

import (
	"log/slog"
	"sync"
	"time"

	"github.com/c360/fusionstream/config"
	"github.com/c360/fusionstream/metric"
)

// Severity classifies a raised alert by the score that triggered it.
type Severity int

const (
	SeverityModerate Severity = iota
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase severity label used in logs and metrics.
func (s Severity) String() string {
	switch s {
	case SeverityModerate:
		return "moderate"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Record is one raised alert. Callers receive copies; the monitor's own
// record is never shared.
type Record struct {
	Severity Severity
	Score    float64
	RaisedAt time.Time
}

// Monitor holds the single-slot alert state. While an alert is current,
// further threshold crossings are absorbed without upgrading or queueing.
type Monitor struct {
	cfg    config.AlertConfig
	logger *slog.Logger

	mu      sync.Mutex
	current *Record
	gen     uint64
	expiry  *time.Timer

	// now is injectable for deterministic tests.
	now func() time.Time

	metrics *Metrics
}

// NewMonitor creates an alert monitor. logger and registry may be nil.
func NewMonitor(cfg config.AlertConfig, logger *slog.Logger, registry *metric.Registry) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AutoDismiss <= 0 {
		cfg.AutoDismiss = 5 * time.Second
	}

	return &Monitor{
		cfg:     cfg,
		logger:  logger.With("component", "alert"),
		now:     time.Now,
		metrics: newMetrics(registry, "alert"),
	}
}

// classify maps a triggering score to a severity. Boundary values take
// the higher-severity branch.
func (m *Monitor) classify(score float64) Severity {
	switch {
	case score >= m.cfg.CriticalThreshold:
		return SeverityCritical
	case score >= m.cfg.HighThreshold:
		return SeverityHigh
	default:
		return SeverityModerate
	}
}

// Observe feeds one anomaly score to the state machine. It reports whether
// a new alert was raised. Scores at or below the raise threshold never
// raise; crossings while an alert is current are absorbed.
func (m *Monitor) Observe(score float64) bool {
	m.mu.Lock()

	if score <= m.cfg.RaiseThreshold || m.current != nil {
		m.mu.Unlock()
		return false
	}

	rec := &Record{
		Severity: m.classify(score),
		Score:    score,
		RaisedAt: m.now(),
	}
	m.current = rec
	m.gen++
	gen := m.gen
	m.expiry = time.AfterFunc(m.cfg.AutoDismiss, func() { m.expire(gen) })
	m.mu.Unlock()

	m.logger.Warn("anomaly alert raised",
		"severity", rec.Severity.String(),
		"score", rec.Score)
	if m.metrics != nil {
		m.metrics.raised.WithLabelValues(rec.Severity.String()).Inc()
		m.metrics.active.Set(1)
	}
	return true
}

// Dismiss retires the current alert, if any. Dismissing when no alert is
// current is a no-op; a pending expiry for a dismissed alert fires inert.
func (m *Monitor) Dismiss() {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.retireLocked()
	m.mu.Unlock()

	m.logger.Info("alert dismissed")
}

// expire is the auto-dismiss path. The generation guard makes a timer
// that fires after its alert was already retired a no-op.
func (m *Monitor) expire(gen uint64) {
	m.mu.Lock()
	if m.current == nil || m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.retireLocked()
	m.mu.Unlock()

	m.logger.Info("alert expired")
}

func (m *Monitor) retireLocked() {
	m.current = nil
	m.gen++
	if m.expiry != nil {
		m.expiry.Stop()
		m.expiry = nil
	}
	if m.metrics != nil {
		m.metrics.active.Set(0)
	}
}

// Current returns a copy of the current alert, or nil when none is raised.
func (m *Monitor) Current() *Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	rec := *m.current
	return &rec
}

// Active reports whether an alert is current.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
