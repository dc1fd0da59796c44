package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/c360/fusionstream/errors"
)

// Kind classifies an inbound payload.
type Kind int

const (
	// KindMalformed marks a payload that is neither a sample nor a
	// recognized control message. Malformed input is discarded with a
	// logged diagnostic and never propagates as a Sample.
	KindMalformed Kind = iota
	// KindSample marks a fused telemetry sample.
	KindSample
	// KindControl marks a control/status message.
	KindControl
)

// String returns a human-readable payload kind.
func (k Kind) String() string {
	switch k {
	case KindSample:
		return "sample"
	case KindControl:
		return "control"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Recognized control message type discriminators.
const (
	ControlConnection        = "connection"
	ControlCommand           = "command"
	ControlAnomalyPrediction = "anomaly_prediction"
)

// Control is a control/status message from the backend, such as the
// connection welcome message or an anomaly prediction broadcast.
type Control struct {
	Type   string   `json:"type"`
	Status string   `json:"status,omitempty"`
	Action string   `json:"action,omitempty"`
	Score  *float64 `json:"score,omitempty"`

	// Raw preserves the full payload for consumers that need
	// fields beyond the common envelope.
	Raw json.RawMessage `json:"-"`
}

// Classify parses a raw inbound payload and classifies it as a telemetry
// sample, a control message, or malformed input.
//
// A payload is a Sample only if it parses as a JSON object carrying both a
// timestamp field and an orientation field. A payload is a Control message
// if it declares a recognized type discriminator. Anything else is
// malformed; the returned error carries the diagnostic.
func Classify(raw []byte) (Kind, *Sample, *Control, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return KindMalformed, nil, nil,
			errors.WrapInvalid(err, "telemetry", "Classify", "parse payload")
	}

	if rawType, ok := probe["type"]; ok {
		var msgType string
		if err := json.Unmarshal(rawType, &msgType); err == nil {
			switch msgType {
			case ControlConnection, ControlCommand, ControlAnomalyPrediction:
				var ctrl Control
				if err := json.Unmarshal(raw, &ctrl); err != nil {
					return KindMalformed, nil, nil,
						errors.WrapInvalid(err, "telemetry", "Classify", "parse control message")
				}
				ctrl.Raw = json.RawMessage(raw)
				return KindControl, nil, &ctrl, nil
			}
		}
	}

	_, hasTimestamp := probe["timestamp"]
	_, hasOrientation := probe["orientation"]
	if hasTimestamp && hasOrientation {
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return KindMalformed, nil, nil,
				errors.WrapInvalid(err, "telemetry", "Classify", "parse sample")
		}
		return KindSample, &sample, nil, nil
	}

	return KindMalformed, nil, nil, errors.WrapInvalid(
		fmt.Errorf("%w: no type discriminator and no timestamp/orientation pair",
			errors.ErrUnknownType),
		"telemetry", "Classify", "classify payload")
}
