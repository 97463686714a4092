package domain

import (
	"context"
	"time"

	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListBillFilter struct {
	PatientID snowflake.ID
	Status    BillStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bill *Bill) error
	FindByID(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID) (*Bill, error)
	List(ctx context.Context, db *gorm.DB, providerID snowflake.ID, filter ListBillFilter, page pagination.Pagination) ([]*Bill, error)
	InsertPayment(ctx context.Context, db *gorm.DB, payment *BillPayment) error
	FindPaymentByKey(ctx context.Context, db *gorm.DB, providerID snowflake.ID, key string) (*BillPayment, error)
	// ApplyPayment atomically accumulates the paid amount and recomputes the
	// status. It refuses to apply when the bill is closed or the payment
	// would exceed the total; the returned bool reports whether a row changed.
	ApplyPayment(ctx context.Context, db *gorm.DB, providerID, billID snowflake.ID, amountCents int64, paidAt time.Time) (bool, error)
	Cancel(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID, at time.Time) (bool, error)
}
