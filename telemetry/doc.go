// Package telemetry defines the wire types for the fused sensor stream and
// the schema validator that classifies inbound payloads as samples, control
// messages, or malformed input.
package telemetry
