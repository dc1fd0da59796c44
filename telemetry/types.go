package telemetry

import (
	"math"
	"time"
)

// Vec3 is a 3D vector used for acceleration, rotation rate, and velocity.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the Euclidean length of the vector.
// Derived values are computed on read, never stored.
func (v Vec3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Quaternion represents 3D orientation without gimbal lock.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity returns the identity quaternion (no rotation).
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// Sample is one fused telemetry reading received from the backend.
// Field names are wire contract and must not be renamed. Samples are
// immutable after creation; downstream consumers retain or discard
// their own copies independently.
type Sample struct {
	Timestamp       time.Time  `json:"timestamp"`
	Orientation     Quaternion `json:"orientation"`
	EulerDegrees    [3]float64 `json:"euler_degrees"` // roll, pitch, yaw
	Position        [3]float64 `json:"position"`      // lat, lon, alt
	Velocity        Vec3       `json:"velocity"`
	RawAcceleration Vec3       `json:"raw_acceleration"`
	RawGyroscope    Vec3       `json:"raw_gyroscope"`
	GPSSpeed        float64    `json:"gps_speed"`
	GPSHeading      float64    `json:"gps_heading"`
	Confidence      float64    `json:"confidence"`
	SystemHealth    float64    `json:"system_health"`
	AnomalyScore    *float64   `json:"anomaly_score,omitempty"`
}

// HasAnomalyScore reports whether the producer attached an anomaly score.
func (s *Sample) HasAnomalyScore() bool {
	return s.AnomalyScore != nil
}

// Score returns the anomaly score, or 0 when absent.
func (s *Sample) Score() float64 {
	if s.AnomalyScore == nil {
		return 0
	}
	return *s.AnomalyScore
}

// AccelMagnitude returns the magnitude of the raw accelerometer reading.
func (s *Sample) AccelMagnitude() float64 {
	return s.RawAcceleration.Magnitude()
}

// SpeedMagnitude returns the magnitude of the fused velocity estimate.
func (s *Sample) SpeedMagnitude() float64 {
	return s.Velocity.Magnitude()
}
