// Package fusionstream is a client-side pipeline for a fused telemetry
// stream: orientation, position, and velocity estimates pushed over a
// WebSocket by a sensor-fusion backend, with anomaly scores riding on
// the samples.
//
// # Architecture
//
// The pipeline is a chain of small, independently testable pieces:
//
//	┌─────────────────────────────────────┐
//	│        stream.Client                │  Connection lifecycle,
//	│  (dial, retry, queue, fan-out)      │  bounded reconnect budget
//	└─────────────────────────────────────┘
//	           ↓ validated samples
//	┌─────────────────────────────────────┐
//	│  window.Buffer    alert.Monitor     │  Display window and
//	│  (throttle, ring) (raise, expire)   │  anomaly alerting
//	└─────────────────────────────────────┘
//	           ↓ snapshots / current alert
//	┌─────────────────────────────────────┐
//	│       cmd/fusionview                │  Presentation, health,
//	│  (summary log, /metrics, /healthz)  │  signal handling
//	└─────────────────────────────────────┘
//
// Inbound payloads are classified by the telemetry package; malformed
// input is counted and discarded without stopping the stream. Outbound
// messages (fault-injection commands) queue across disconnects and flush
// FIFO after the next successful handshake.
//
// Supporting packages: errors (classified errors), config (YAML config),
// metric (Prometheus registry and HTTP endpoint), health (aggregate
// liveness), pkg/ring (bounded buffer), pkg/retry (reconnect budget),
// pkg/tlsutil (wss client TLS).
package fusionstream
