package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Patient is a clinic client record. MRN is minted once at creation and is
// unique across the clinic.
type Patient struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProviderID  snowflake.ID      `gorm:"not null;index" json:"provider_id"`
	MRN         string            `gorm:"column:mrn;not null;uniqueIndex" json:"mrn"`
	Name        string            `gorm:"not null" json:"name"`
	DateOfBirth *time.Time        `json:"date_of_birth,omitempty"`
	Gender      string            `gorm:"type:text" json:"gender,omitempty"`
	Phone       string            `gorm:"type:text" json:"phone,omitempty"`
	Email       string            `gorm:"type:text" json:"email,omitempty"`
	Address     string            `gorm:"type:text" json:"address,omitempty"`
	BloodType   string            `gorm:"type:text" json:"blood_type,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Patient) TableName() string { return "patients" }
