package repository

import (
	"context"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/billing/domain"
	"github.com/bizzy604/HIS-sub000/pkg/db/option"
	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, bill *domain.Bill) error {
	return db.WithContext(ctx).Create(bill).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID) (*domain.Bill, error) {
	var bill domain.Bill
	err := db.WithContext(ctx).
		Preload("Items").
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&bill).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, providerID snowflake.ID, filter domain.ListBillFilter, page pagination.Pagination) ([]*domain.Bill, error) {
	var bills []*domain.Bill
	stmt := db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("provider_id = ?", providerID)
	if filter.PatientID != 0 {
		stmt = stmt.Where("patient_id = ?", filter.PatientID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.BillPayment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindPaymentByKey(ctx context.Context, db *gorm.DB, providerID snowflake.ID, key string) (*domain.BillPayment, error) {
	var payment domain.BillPayment
	err := db.WithContext(ctx).
		Where("provider_id = ? AND idempotency_key = ?", providerID, key).
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repo) ApplyPayment(ctx context.Context, db *gorm.DB, providerID, billID snowflake.ID, amountCents int64, paidAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bills
		 SET paid_cents = paid_cents + ?,
		     status = CASE WHEN paid_cents + ? >= total_cents THEN 'PAID' ELSE 'PARTIAL' END,
		     paid_at = ?,
		     updated_at = ?
		 WHERE provider_id = ? AND id = ?
		   AND status IN ('PENDING', 'PARTIAL')
		   AND paid_cents + ? <= total_cents`,
		amountCents, amountCents, paidAt, paidAt, providerID, billID, amountCents,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Cancel(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bills SET status = 'CANCELLED', updated_at = ? WHERE provider_id = ? AND id = ? AND status = 'PENDING'`,
		at, providerID, id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
