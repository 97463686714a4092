package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// LabOrderStatus represents lab order lifecycle states.
type LabOrderStatus string

const (
	LabOrderStatusOrdered    LabOrderStatus = "ORDERED"
	LabOrderStatusInProgress LabOrderStatus = "IN_PROGRESS"
	LabOrderStatusCompleted  LabOrderStatus = "COMPLETED"
	LabOrderStatusCancelled  LabOrderStatus = "CANCELLED"
)

// allowedTransitions is the server-enforced lab order state machine.
// Completion happens only through result recording.
var allowedTransitions = map[LabOrderStatus][]LabOrderStatus{
	LabOrderStatusOrdered:    {LabOrderStatusInProgress, LabOrderStatusCancelled},
	LabOrderStatusInProgress: {LabOrderStatusCompleted, LabOrderStatusCancelled},
}

// CanTransition reports whether moving from one status to the next is allowed.
func CanTransition(from, to LabOrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type LabOrder struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProviderID  snowflake.ID      `gorm:"not null;index" json:"provider_id"`
	PatientID   snowflake.ID      `gorm:"not null;index" json:"patient_id"`
	VisitID     *snowflake.ID     `gorm:"index" json:"visit_id,omitempty"`
	TestName    string            `gorm:"type:varchar(255);not null" json:"test_name"`
	TestCode    string            `gorm:"type:varchar(64)" json:"test_code,omitempty"`
	Status      LabOrderStatus    `gorm:"type:text;not null;default:'ORDERED'" json:"status"`
	Priority    string            `gorm:"type:varchar(32);not null;default:'ROUTINE'" json:"priority"`
	Notes       string            `gorm:"type:text" json:"notes,omitempty"`
	Results     datatypes.JSONMap `gorm:"type:json" json:"results,omitempty"`
	OrderedAt   time.Time         `gorm:"not null" json:"ordered_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (LabOrder) TableName() string { return "lab_orders" }
