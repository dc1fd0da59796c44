package telemetry

import (
	"encoding/json"
	"time"

	"github.com/c360/fusionstream/errors"
)

// Fault types understood by the telemetry producer. The client treats
// them as opaque strings; only the envelope shape is validated here.
const (
	FaultAccelSpike = "accel_spike"
	FaultGyroSpike  = "gyro_spike"
	FaultHighNoise  = "high_noise"
	FaultReset      = "reset"
)

// Command is the outbound control envelope sent to the backend.
type Command struct {
	Type       string         `json:"type"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Timestamp  string         `json:"timestamp"`
}

// NewCommand builds a command envelope with the current UTC timestamp.
func NewCommand(action string, parameters map[string]any) Command {
	if parameters == nil {
		parameters = map[string]any{}
	}
	return Command{
		Type:       ControlCommand,
		Action:     action,
		Parameters: parameters,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// EncodeFaultInjection builds the inject_fault command payload.
func EncodeFaultInjection(faultType string) ([]byte, error) {
	cmd := NewCommand("inject_fault", map[string]any{"fault_type": faultType})
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, errors.WrapInvalid(err, "telemetry", "EncodeFaultInjection", "marshal command")
	}
	return data, nil
}

// EncodeAnomalyPrediction builds an anomaly score message for the backend.
func EncodeAnomalyPrediction(score float64) ([]byte, error) {
	msg := map[string]any{
		"type":      ControlAnomalyPrediction,
		"score":     score,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.WrapInvalid(err, "telemetry", "EncodeAnomalyPrediction", "marshal message")
	}
	return data, nil
}

// EncodeHeartbeat builds a keep-alive message.
func EncodeHeartbeat() ([]byte, error) {
	msg := map[string]any{
		"type":      "heartbeat",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.WrapInvalid(err, "telemetry", "EncodeHeartbeat", "marshal message")
	}
	return data, nil
}
