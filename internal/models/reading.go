package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reading is a single sensor measurement reported by a machine.
// Written by the stream consumer only; the raw message is retained in Payload.
type Reading struct {
	ID          uint   `gorm:"primarykey"`
	MachineCode string `gorm:"not null;index:idx_readings_machine_time,priority:1"`
	DepthCM     float64
	RainfallMM  float64
	VelocityMS  float64
	RecordedAt  time.Time `gorm:"not null;index:idx_readings_machine_time,priority:2"`
	Payload     datatypes.JSON
	CreatedAt   time.Time
}
