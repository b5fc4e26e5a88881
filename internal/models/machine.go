package models

import "gorm.io/gorm"

// MachineProfile represents a registered river-sensor machine.
// MachineCode is the stable identifier sensors report readings under.
type MachineProfile struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index"`
	User        User   `gorm:"constraint:OnDelete:CASCADE;"`
	MachineName string `gorm:"not null"`
	MachineCode string `gorm:"not null;uniqueIndex:idx_machine_profiles_code_not_deleted,where:deleted_at IS NULL"`
	RiverName   string `gorm:"not null;default:''"`
	Location    string `gorm:"not null;default:''"`
}
