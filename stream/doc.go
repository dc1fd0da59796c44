// Package stream implements the connection manager for the fused telemetry
// stream: a single long-lived WebSocket link with bounded automatic retry,
// an outbound FIFO queue that survives disconnects, observer fan-out for
// status and payload events, and an externally injected resume signal.
package stream
