package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role names seeded into the authorization layer.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RolePharmacist   = "pharmacist"
	RoleReceptionist = "receptionist"
)

// Provider is a clinic staff member who authenticates against the API.
// Identity resolution itself is delegated to the upstream identity provider;
// the API token recorded here is the opaque handle it hands us.
type Provider struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Email     string       `gorm:"not null;uniqueIndex" json:"email"`
	Role      string       `gorm:"type:text;not null;default:'doctor'" json:"role"`
	Specialty string       `gorm:"type:text" json:"specialty,omitempty"`
	APIToken  string       `gorm:"column:api_token;not null;uniqueIndex" json:"-"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Provider) TableName() string { return "providers" }
