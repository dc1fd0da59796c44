package alert

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/fusionstream/metric"
)

// Metrics holds Prometheus metrics for the alert monitor
type Metrics struct {
	raised *prometheus.CounterVec
	active prometheus.Gauge
}

func newMetrics(registry *metric.Registry, componentName string) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		raised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "alert",
			Name:      "raised_total",
			Help:      "Alerts raised, by severity",
		}, []string{"severity"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fusionstream",
			Subsystem: "alert",
			Name:      "active",
			Help:      "Whether an alert is currently raised (0 or 1)",
		}),
	}

	registry.RegisterCounterVec(componentName, "raised", m.raised)
	registry.RegisterGauge(componentName, "active", m.active)

	return m
}
