package readings

import "time"

// Stream name constants
const (
	StreamReadings = "readings:ingest"
)

// Consumer group constants
const (
	GroupIngest = "rivergauge-ingest"
)

// Schema version constant
const (
	SchemaVersionV1 = "v1"
)

// ReadingMessage is a sensor measurement as published on the ingest stream.
// RecordedAt is RFC 3339 in the wire payload.
type ReadingMessage struct {
	MachineCode string    `json:"machine_code"`
	DepthCM     float64   `json:"depth_cm"`
	RainfallMM  float64   `json:"rainfall_mm"`
	VelocityMS  float64   `json:"velocity_ms"`
	RecordedAt  time.Time `json:"recorded_at"`
}
