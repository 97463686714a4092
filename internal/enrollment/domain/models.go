package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// EnrollmentStatus represents the state of a patient within a program.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
)

// Enrollment links a patient to a health program. A patient holds at most one
// enrollment per program, enforced by a unique index.
type Enrollment struct {
	ID         snowflake.ID     `gorm:"primaryKey" json:"id"`
	ProviderID snowflake.ID     `gorm:"not null;index" json:"provider_id"`
	PatientID  snowflake.ID     `gorm:"not null;uniqueIndex:idx_enrollment_patient_program" json:"patient_id"`
	ProgramID  snowflake.ID     `gorm:"not null;uniqueIndex:idx_enrollment_patient_program" json:"program_id"`
	Status     EnrollmentStatus `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	EnrolledAt time.Time        `gorm:"not null" json:"enrolled_at"`
	EndedAt    *time.Time       `json:"ended_at,omitempty"`
	Notes      string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Enrollment) TableName() string { return "enrollments" }
