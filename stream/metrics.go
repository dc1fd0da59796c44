package stream

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/fusionstream/metric"
)

// Metrics holds Prometheus metrics for the stream client
type Metrics struct {
	samplesReceived   prometheus.Counter
	controlReceived   *prometheus.CounterVec
	malformedPayloads prometheus.Counter
	messagesSent      prometheus.Counter
	outboundQueued    prometheus.Gauge
	reconnectAttempts prometheus.Counter
	connectsTotal     prometheus.Counter
	connectionState   prometheus.Gauge
}

// newMetrics creates and registers stream client metrics
func newMetrics(registry *metric.Registry, componentName string) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		samplesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "stream",
			Name:      "samples_received_total",
			Help:      "Total telemetry samples received",
		}),

		controlReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "stream",
			Name:      "control_received_total",
			Help:      "Total control messages received",
		}, []string{"type"}),

		malformedPayloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "stream",
			Name:      "malformed_payloads_total",
			Help:      "Total payloads discarded as malformed",
		}),

		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "stream",
			Name:      "messages_sent_total",
			Help:      "Total messages written to the transport",
		}),

		outboundQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fusionstream",
			Subsystem: "stream",
			Name:      "outbound_queue_depth",
			Help:      "Messages waiting for the next open link",
		}),

		reconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "stream",
			Name:      "reconnect_attempts_total",
			Help:      "Total scheduled reconnection attempts",
		}),

		connectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fusionstream",
			Subsystem: "stream",
			Name:      "connects_total",
			Help:      "Total successful connection handshakes",
		}),

		connectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fusionstream",
			Subsystem: "stream",
			Name:      "connection_state",
			Help:      "Connection state (0=closed, 1=connecting, 2=open, 3=reconnect_scheduled, 4=exhausted)",
		}),
	}

	registry.RegisterCounter(componentName, "samples_received", m.samplesReceived)
	registry.RegisterCounterVec(componentName, "control_received", m.controlReceived)
	registry.RegisterCounter(componentName, "malformed_payloads", m.malformedPayloads)
	registry.RegisterCounter(componentName, "messages_sent", m.messagesSent)
	registry.RegisterGauge(componentName, "outbound_queued", m.outboundQueued)
	registry.RegisterCounter(componentName, "reconnect_attempts", m.reconnectAttempts)
	registry.RegisterCounter(componentName, "connects_total", m.connectsTotal)
	registry.RegisterGauge(componentName, "connection_state", m.connectionState)

	return m
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	m.connectionState.Set(float64(s))
}
