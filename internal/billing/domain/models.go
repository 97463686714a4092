package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillStatus represents bill lifecycle states.
type BillStatus string

const (
	BillStatusPending   BillStatus = "PENDING"
	BillStatusPartial   BillStatus = "PARTIAL"
	BillStatusPaid      BillStatus = "PAID"
	BillStatusCancelled BillStatus = "CANCELLED"
)

// ItemType classifies a bill line.
type ItemType string

const (
	ItemTypeConsultation ItemType = "CONSULTATION"
	ItemTypeProcedure    ItemType = "PROCEDURE"
	ItemTypeMedication   ItemType = "MEDICATION"
	ItemTypeLabTest      ItemType = "LAB_TEST"
	ItemTypeOther        ItemType = "OTHER"
)

// Bill is a patient invoice. All monetary amounts are integer cents; totals
// are computed once at creation and never recomputed.
type Bill struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProviderID      snowflake.ID      `gorm:"not null;index" json:"provider_id"`
	PatientID       snowflake.ID      `gorm:"not null;index" json:"patient_id"`
	BillNumber      string            `gorm:"not null;uniqueIndex" json:"bill_number"`
	Status          BillStatus        `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	SubtotalCents   int64             `gorm:"not null;default:0" json:"subtotal_cents"`
	DiscountPercent float64           `gorm:"not null;default:0" json:"discount_percent"`
	DiscountCents   int64             `gorm:"not null;default:0" json:"discount_cents"`
	TaxCents        int64             `gorm:"not null;default:0" json:"tax_cents"`
	TotalCents      int64             `gorm:"not null;default:0" json:"total_cents"`
	PaidCents       int64             `gorm:"not null;default:0" json:"paid_cents"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []BillItem `gorm:"foreignKey:BillID" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }

// BillItem is a line on a bill.
type BillItem struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ProviderID     snowflake.ID `gorm:"not null;index" json:"provider_id"`
	BillID         snowflake.ID `gorm:"not null;index" json:"bill_id"`
	Description    string       `gorm:"type:text;not null" json:"description"`
	ItemType       ItemType     `gorm:"type:text;not null;default:'OTHER'" json:"item_type"`
	Quantity       int64        `gorm:"not null" json:"quantity"`
	UnitPriceCents int64        `gorm:"not null" json:"unit_price_cents"`
	TotalCents     int64        `gorm:"not null" json:"total_cents"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (BillItem) TableName() string { return "bill_items" }

// BillPayment records a single payment against a bill. IdempotencyKey is
// unique so a retried request cannot double count.
type BillPayment struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ProviderID     snowflake.ID `gorm:"not null;uniqueIndex:idx_bill_payments_provider_key" json:"provider_id"`
	BillID         snowflake.ID `gorm:"not null;index" json:"bill_id"`
	AmountCents    int64        `gorm:"not null" json:"amount_cents"`
	Method         string       `gorm:"type:text;not null" json:"method"`
	IdempotencyKey string       `gorm:"not null;uniqueIndex:idx_bill_payments_provider_key" json:"idempotency_key"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (BillPayment) TableName() string { return "bill_payments" }
