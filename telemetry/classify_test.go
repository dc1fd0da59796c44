package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/fusionstream/errors"
)

const sampleJSON = `{
	"timestamp": "2026-08-27T12:00:00Z",
	"orientation": {"w": 1.0, "x": 0.0, "y": 0.0, "z": 0.0},
	"euler_degrees": [1.5, -2.25, 179.0],
	"position": [29.76, -95.37, 12.5],
	"velocity": {"x": 1.0, "y": 2.0, "z": 2.0},
	"raw_acceleration": {"x": 0.1, "y": 0.2, "z": 9.81},
	"raw_gyroscope": {"x": 0.01, "y": 0.02, "z": 0.03},
	"gps_speed": 3.1,
	"gps_heading": 182.4,
	"confidence": 0.97,
	"system_health": 1.0,
	"anomaly_score": 0.42
}`

func TestClassifySample(t *testing.T) {
	kind, sample, ctrl, err := Classify([]byte(sampleJSON))

	require.NoError(t, err)
	require.Equal(t, KindSample, kind)
	require.NotNil(t, sample)
	assert.Nil(t, ctrl)

	assert.Equal(t, time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC), sample.Timestamp)
	assert.Equal(t, Quaternion{W: 1}, sample.Orientation)
	assert.Equal(t, [3]float64{1.5, -2.25, 179.0}, sample.EulerDegrees)
	assert.Equal(t, [3]float64{29.76, -95.37, 12.5}, sample.Position)
	assert.InDelta(t, 3.0, sample.SpeedMagnitude(), 1e-9)
	require.True(t, sample.HasAnomalyScore())
	assert.InDelta(t, 0.42, sample.Score(), 1e-9)
}

func TestClassifySampleWithoutScore(t *testing.T) {
	payload := `{"timestamp": "2026-08-27T12:00:00Z", "orientation": {"w": 1, "x": 0, "y": 0, "z": 0}}`

	kind, sample, _, err := Classify([]byte(payload))

	require.NoError(t, err)
	require.Equal(t, KindSample, kind)
	assert.False(t, sample.HasAnomalyScore())
	assert.Zero(t, sample.Score())
}

func TestClassifyControlConnection(t *testing.T) {
	payload := `{"type": "connection", "status": "connected"}`

	kind, sample, ctrl, err := Classify([]byte(payload))

	require.NoError(t, err)
	require.Equal(t, KindControl, kind)
	assert.Nil(t, sample)
	require.NotNil(t, ctrl)
	assert.Equal(t, ControlConnection, ctrl.Type)
	assert.Equal(t, "connected", ctrl.Status)
	assert.JSONEq(t, payload, string(ctrl.Raw))
}

func TestClassifyControlAnomalyPrediction(t *testing.T) {
	payload := `{"type": "anomaly_prediction", "score": 0.91, "timestamp": "2026-08-27T12:00:00Z"}`

	kind, _, ctrl, err := Classify([]byte(payload))

	require.NoError(t, err)
	require.Equal(t, KindControl, kind)
	require.NotNil(t, ctrl.Score)
	assert.InDelta(t, 0.91, *ctrl.Score, 1e-9)
}

func TestClassifyMalformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"unrelated object", `{"foo": "bar"}`},
		{"unrecognized type", `{"type": "mystery"}`},
		{"not json", `not json at all`},
		{"json array", `[1, 2, 3]`},
		{"timestamp only", `{"timestamp": "2026-08-27T12:00:00Z"}`},
		{"orientation only", `{"orientation": {"w": 1, "x": 0, "y": 0, "z": 0}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, sample, ctrl, err := Classify([]byte(tc.payload))

			assert.Equal(t, KindMalformed, kind)
			assert.Nil(t, sample)
			assert.Nil(t, ctrl)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestClassifyMalformedSampleFields(t *testing.T) {
	// Has the discriminating fields but a field of the wrong shape
	payload := `{"timestamp": "2026-08-27T12:00:00Z", "orientation": {"w": 1, "x": 0, "y": 0, "z": 0}, "velocity": "fast"}`

	kind, sample, _, err := Classify([]byte(payload))

	assert.Equal(t, KindMalformed, kind)
	assert.Nil(t, sample)
	require.Error(t, err)
}

func TestEncodeFaultInjection(t *testing.T) {
	data, err := EncodeFaultInjection(FaultAccelSpike)
	require.NoError(t, err)

	var cmd Command
	require.NoError(t, json.Unmarshal(data, &cmd))
	assert.Equal(t, "command", cmd.Type)
	assert.Equal(t, "inject_fault", cmd.Action)
	assert.Equal(t, "accel_spike", cmd.Parameters["fault_type"])
	assert.NotEmpty(t, cmd.Timestamp)

	_, err = time.Parse(time.RFC3339Nano, cmd.Timestamp)
	assert.NoError(t, err)
}

func TestEncodeAnomalyPrediction(t *testing.T) {
	data, err := EncodeAnomalyPrediction(0.83)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "anomaly_prediction", msg["type"])
	assert.InDelta(t, 0.83, msg["score"].(float64), 1e-9)
}

func TestEncodeHeartbeat(t *testing.T) {
	data, err := EncodeHeartbeat()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "heartbeat", msg["type"])
}

func TestVec3Magnitude(t *testing.T) {
	assert.InDelta(t, 0.0, Vec3{}.Magnitude(), 1e-12)
	assert.InDelta(t, 5.0, Vec3{X: 3, Y: 4}.Magnitude(), 1e-12)
	assert.InDelta(t, 7.0, Vec3{X: 2, Y: 3, Z: 6}.Magnitude(), 1e-12)
}
