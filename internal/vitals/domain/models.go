package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// VitalSign is a single set of readings taken for a patient, optionally
// attached to the visit during which it was taken.
type VitalSign struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProviderID       snowflake.ID  `gorm:"not null;index" json:"provider_id"`
	PatientID        snowflake.ID  `gorm:"not null;index" json:"patient_id"`
	VisitID          *snowflake.ID `gorm:"index" json:"visit_id,omitempty"`
	TemperatureC     *float64      `json:"temperature_c,omitempty"`
	PulseBPM         *int64        `json:"pulse_bpm,omitempty"`
	RespiratoryRate  *int64        `json:"respiratory_rate,omitempty"`
	SystolicBP       *int64        `json:"systolic_bp,omitempty"`
	DiastolicBP      *int64        `json:"diastolic_bp,omitempty"`
	OxygenSaturation *float64      `json:"oxygen_saturation,omitempty"`
	WeightKG         *float64      `json:"weight_kg,omitempty"`
	HeightCM         *float64      `json:"height_cm,omitempty"`
	RecordedAt       time.Time     `gorm:"not null;index" json:"recorded_at"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (VitalSign) TableName() string { return "vital_signs" }
