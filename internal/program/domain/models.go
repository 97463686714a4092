package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Program is a health program offered by a provider, e.g. TB, HIV or
// antenatal care.
type Program struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ProviderID  snowflake.ID `gorm:"not null;index" json:"provider_id"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Active      bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Program) TableName() string { return "programs" }
