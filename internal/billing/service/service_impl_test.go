package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bizzy604/HIS-sub000/internal/access"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	billingdomain "github.com/bizzy604/HIS-sub000/internal/billing/domain"
	billingrepo "github.com/bizzy604/HIS-sub000/internal/billing/repository"
	billingservice "github.com/bizzy604/HIS-sub000/internal/billing/service"
	"github.com/bizzy604/HIS-sub000/internal/config"
	patientdomain "github.com/bizzy604/HIS-sub000/internal/patient/domain"
	"github.com/bizzy604/HIS-sub000/internal/sequence"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:billdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&patientdomain.Patient{},
		&billingdomain.Bill{},
		&billingdomain.BillItem{},
		&billingdomain.BillPayment{},
	))
	require.NoError(t, db.Exec(`CREATE TABLE document_sequences (
		scope TEXT NOT NULL,
		day TEXT NOT NULL,
		last_value BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		PRIMARY KEY (scope, day)
	)`).Error)

	return db
}

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       billingdomain.Service
	ctx       context.Context
	patientID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	providerID := node.Generate()
	ctx := authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: providerID,
		Role:       "receptionist",
	})

	patientID := node.Generate()
	require.NoError(t, db.Create(&patientdomain.Patient{
		ID:         patientID,
		ProviderID: providerID,
		MRN:        "MRN-20260831-0001",
		Name:       "Asha Mwangi",
		Metadata:   datatypes.JSONMap{},
	}).Error)

	accessSvc := access.New(access.Params{DB: db, Log: zap.NewNop()})
	svc := billingservice.New(billingservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		Cfg:       config.Config{TaxRateBasisPoints: 1500},
		GenID:     node,
		Allocator: sequence.NewAllocator(zap.NewNop()),
		Repo:      billingrepo.Provide(),
		AccessSvc: accessSvc,
	})

	return &fixture{db: db, node: node, svc: svc, ctx: ctx, patientID: patientID}
}

func (f *fixture) createBill(t *testing.T, discount float64) billingdomain.Bill {
	t.Helper()

	bill, err := f.svc.Create(f.ctx, billingdomain.CreateBillRequest{
		PatientID: f.patientID.String(),
		Items: []billingdomain.BillItemInput{
			{Description: "Consultation", ItemType: "CONSULTATION", Quantity: 2, UnitPrice: 50},
			{Description: "Dressing kit", ItemType: "PROCEDURE", Quantity: 1, UnitPrice: 30},
		},
		DiscountPercent: discount,
	})
	require.NoError(t, err)
	return bill
}

func TestCreateBillComputesTotals(t *testing.T) {
	f := newFixture(t)

	bill := f.createBill(t, 10)

	assert.Equal(t, "BILL-"+time.Now().UTC().Format("20060102")+"-0001", bill.BillNumber)
	assert.Equal(t, billingdomain.BillStatusPending, bill.Status)
	assert.Equal(t, int64(13000), bill.SubtotalCents)
	assert.Equal(t, int64(1300), bill.DiscountCents)
	assert.Equal(t, int64(1755), bill.TaxCents)
	assert.Equal(t, int64(13455), bill.TotalCents)
	assert.Len(t, bill.Items, 2)
}

func TestCreateBillRejectsBadDiscount(t *testing.T) {
	f := newFixture(t)

	for _, discount := range []float64{-1, 100.5} {
		_, err := f.svc.Create(f.ctx, billingdomain.CreateBillRequest{
			PatientID: f.patientID.String(),
			Items: []billingdomain.BillItemInput{
				{Description: "Consultation", Quantity: 1, UnitPrice: 50},
			},
			DiscountPercent: discount,
		})
		assert.ErrorIs(t, err, billingdomain.ErrInvalidDiscount)
	}
}

func TestCreateBillRejectsEmptyItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, billingdomain.CreateBillRequest{
		PatientID: f.patientID.String(),
	})
	assert.ErrorIs(t, err, billingdomain.ErrEmptyItems)
}

func TestCreateBillUnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, billingdomain.CreateBillRequest{
		PatientID: f.node.Generate().String(),
		Items: []billingdomain.BillItemInput{
			{Description: "Consultation", Quantity: 1, UnitPrice: 50},
		},
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidPatient)
}

func TestRecordPaymentAccumulates(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, 0)
	// subtotal 13000, tax 1950, total 14950

	updated, err := f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: 100,
		Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, billingdomain.BillStatusPartial, updated.Status)
	assert.Equal(t, int64(10000), updated.PaidCents)

	updated, err = f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: 49.50,
		Method: "mpesa",
	})
	require.NoError(t, err)
	assert.Equal(t, billingdomain.BillStatusPaid, updated.Status)
	assert.Equal(t, updated.TotalCents, updated.PaidCents)
}

func TestRecordPaymentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, 0)

	req := billingdomain.RecordPaymentRequest{
		BillID:         bill.ID.String(),
		Amount:         50,
		Method:         "CASH",
		IdempotencyKey: "register-7-receipt-12",
	}

	first, err := f.svc.RecordPayment(f.ctx, req)
	require.NoError(t, err)

	second, err := f.svc.RecordPayment(f.ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.PaidCents, second.PaidCents, "retry must not double count")

	var count int64
	require.NoError(t, f.db.Model(&billingdomain.BillPayment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordPaymentKeyReuseAcrossBills(t *testing.T) {
	f := newFixture(t)
	first := f.createBill(t, 0)
	second := f.createBill(t, 0)

	_, err := f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID:         first.ID.String(),
		Amount:         50,
		Method:         "CASH",
		IdempotencyKey: "register-7-receipt-13",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID:         second.ID.String(),
		Amount:         50,
		Method:         "CASH",
		IdempotencyKey: "register-7-receipt-13",
	})
	assert.ErrorIs(t, err, billingdomain.ErrIdempotencyConflict)

	reloaded, err := f.svc.GetByID(f.ctx, billingdomain.GetBillRequest{ID: second.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloaded.PaidCents, "second bill stays unpaid")
	assert.Equal(t, billingdomain.BillStatusPending, reloaded.Status)
}

func TestRecordPaymentKeyReuseWithDifferentAmount(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, 0)

	_, err := f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID:         bill.ID.String(),
		Amount:         50,
		Method:         "CASH",
		IdempotencyKey: "register-7-receipt-14",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID:         bill.ID.String(),
		Amount:         60,
		Method:         "CASH",
		IdempotencyKey: "register-7-receipt-14",
	})
	assert.ErrorIs(t, err, billingdomain.ErrIdempotencyConflict)

	reloaded, err := f.svc.GetByID(f.ctx, billingdomain.GetBillRequest{ID: bill.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), reloaded.PaidCents, "only the recorded payment counts")
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, 0)

	_, err := f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: 200,
		Method: "cash",
	})
	assert.ErrorIs(t, err, billingdomain.ErrOverpayment)

	reloaded, err := f.svc.GetByID(f.ctx, billingdomain.GetBillRequest{ID: bill.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloaded.PaidCents, "rejected payment leaves the bill untouched")
	assert.Equal(t, billingdomain.BillStatusPending, reloaded.Status)
}

func TestRecordPaymentOnCancelledBill(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, 0)

	_, err := f.svc.Cancel(f.ctx, billingdomain.CancelBillRequest{ID: bill.ID.String()})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: 10,
		Method: "cash",
	})
	assert.ErrorIs(t, err, billingdomain.ErrBillClosed)
}

func TestCancelNonPendingBill(t *testing.T) {
	f := newFixture(t)
	bill := f.createBill(t, 0)

	_, err := f.svc.RecordPayment(f.ctx, billingdomain.RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: 149.50,
		Method: "cash",
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(f.ctx, billingdomain.CancelBillRequest{ID: bill.ID.String()})
	assert.ErrorIs(t, err, billingdomain.ErrBillClosed)
}

func TestBillRequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), billingdomain.CreateBillRequest{
		PatientID: f.patientID.String(),
		Items: []billingdomain.BillItemInput{
			{Description: "Consultation", Quantity: 1, UnitPrice: 50},
		},
	})
	assert.ErrorIs(t, err, billingdomain.ErrUnauthenticated)
}
