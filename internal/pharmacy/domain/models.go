package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Medicine is a pharmacy catalogue entry. StockQuantity is the live on-hand
// count, moved only by batch receipts and dispensing, both transactional.
type Medicine struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"not null;uniqueIndex" json:"name"`
	GenericName    string       `gorm:"type:text" json:"generic_name,omitempty"`
	Form           string       `gorm:"type:text" json:"form,omitempty"`
	Strength       string       `gorm:"type:text" json:"strength,omitempty"`
	StockQuantity  int64        `gorm:"not null;default:0" json:"stock_quantity"`
	ReorderLevel   int64        `gorm:"not null;default:0" json:"reorder_level"`
	UnitPriceCents int64        `gorm:"not null;default:0" json:"unit_price_cents"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Medicine) TableName() string { return "medicines" }

// MedicineBatch is a received lot of stock for a medicine.
type MedicineBatch struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	MedicineID  snowflake.ID `gorm:"not null;index" json:"medicine_id"`
	BatchNumber string       `gorm:"not null" json:"batch_number"`
	Quantity    int64        `gorm:"not null" json:"quantity"`
	CostCents   int64        `gorm:"not null;default:0" json:"cost_cents"`
	ExpiryDate  *time.Time   `gorm:"index" json:"expiry_date,omitempty"`
	ReceivedAt  time.Time    `gorm:"not null" json:"received_at"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (MedicineBatch) TableName() string { return "medicine_batches" }
