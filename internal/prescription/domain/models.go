package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PrescriptionStatus represents prescription lifecycle states.
type PrescriptionStatus string

const (
	PrescriptionStatusActive    PrescriptionStatus = "ACTIVE"
	PrescriptionStatusDispensed PrescriptionStatus = "DISPENSED"
	PrescriptionStatusCancelled PrescriptionStatus = "CANCELLED"
)

type Prescription struct {
	ID          snowflake.ID       `gorm:"primaryKey" json:"id"`
	ProviderID  snowflake.ID       `gorm:"not null;index" json:"provider_id"`
	PatientID   snowflake.ID       `gorm:"not null;index" json:"patient_id"`
	VisitID     *snowflake.ID      `gorm:"index" json:"visit_id,omitempty"`
	Status      PrescriptionStatus `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	Notes       string             `gorm:"type:text" json:"notes,omitempty"`
	DispensedAt *time.Time         `json:"dispensed_at,omitempty"`
	CreatedAt   time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []PrescriptionItem `gorm:"foreignKey:PrescriptionID" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Prescription) TableName() string { return "prescriptions" }

type PrescriptionItem struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	PrescriptionID snowflake.ID `gorm:"not null;index" json:"prescription_id"`
	MedicineID     snowflake.ID `gorm:"not null;index" json:"medicine_id"`
	Dosage         string       `gorm:"type:text;not null" json:"dosage"`
	Frequency      string       `gorm:"type:text" json:"frequency,omitempty"`
	DurationDays   int64        `gorm:"not null;default:0" json:"duration_days"`
	Quantity       int64        `gorm:"not null" json:"quantity"`
	Instructions   string       `gorm:"type:text" json:"instructions,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PrescriptionItem) TableName() string { return "prescription_items" }
