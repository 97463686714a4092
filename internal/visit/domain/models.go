package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Visit is a clinical encounter record, optionally tied to the appointment
// that produced it.
type Visit struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProviderID     snowflake.ID  `gorm:"not null;index" json:"provider_id"`
	PatientID      snowflake.ID  `gorm:"not null;index" json:"patient_id"`
	AppointmentID  *snowflake.ID `gorm:"index" json:"appointment_id,omitempty"`
	VisitDate      time.Time     `gorm:"not null;index" json:"visit_date"`
	ChiefComplaint string        `gorm:"type:text" json:"chief_complaint,omitempty"`
	Diagnosis      string        `gorm:"type:text" json:"diagnosis,omitempty"`
	TreatmentPlan  string        `gorm:"type:text" json:"treatment_plan,omitempty"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Visit) TableName() string { return "medical_visits" }
