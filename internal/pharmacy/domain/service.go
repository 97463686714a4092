package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateMedicineRequest struct {
	Name         string
	GenericName  string
	Form         string
	Strength     string
	ReorderLevel int64
	UnitPrice    float64
}

type UpdateMedicineRequest struct {
	ID           string
	Name         *string
	GenericName  *string
	Form         *string
	Strength     *string
	ReorderLevel *int64
	UnitPrice    *float64
}

type GetMedicineRequest struct {
	ID string
}

type ListMedicineRequest struct {
	Query    string
	LowStock bool
}

type ListMedicineResponse struct {
	Medicines []Medicine `json:"medicines"`
}

type ReceiveBatchRequest struct {
	MedicineID  string
	BatchNumber string
	Quantity    int64
	Cost        float64
	ExpiryDate  *time.Time
}

type ListBatchRequest struct {
	MedicineID     string
	ExpiringWithin int // days; 0 means no expiry filter
}

type ListBatchResponse struct {
	Batches []MedicineBatch `json:"batches"`
}

type Service interface {
	CreateMedicine(context.Context, CreateMedicineRequest) (Medicine, error)
	GetMedicine(context.Context, GetMedicineRequest) (Medicine, error)
	ListMedicines(context.Context, ListMedicineRequest) (ListMedicineResponse, error)
	UpdateMedicine(context.Context, UpdateMedicineRequest) (Medicine, error)
	ReceiveBatch(context.Context, ReceiveBatchRequest) (MedicineBatch, error)
	ListBatches(context.Context, ListBatchRequest) (ListBatchResponse, error)

	// DecrementStock runs inside the caller's transaction so dispensing and
	// the stock movement commit together. Fails when on-hand stock is short.
	DecrementStock(ctx context.Context, tx *gorm.DB, medicineID snowflake.ID, quantity int64) error
}

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidBatch      = errors.New("invalid_batch")
	ErrNotFound          = errors.New("not_found")
	ErrInsufficientStock = errors.New("insufficient_stock")
)
