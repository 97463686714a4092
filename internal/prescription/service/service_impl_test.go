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
	patientdomain "github.com/bizzy604/HIS-sub000/internal/patient/domain"
	pharmacydomain "github.com/bizzy604/HIS-sub000/internal/pharmacy/domain"
	pharmacyservice "github.com/bizzy604/HIS-sub000/internal/pharmacy/service"
	"github.com/bizzy604/HIS-sub000/internal/prescription/domain"
	prescriptionservice "github.com/bizzy604/HIS-sub000/internal/prescription/service"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       domain.Service
	pharmacy  pharmacydomain.Service
	ctx       context.Context
	patientID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:rxdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&patientdomain.Patient{},
		&pharmacydomain.Medicine{},
		&pharmacydomain.MedicineBatch{},
		&domain.Prescription{},
		&domain.PrescriptionItem{},
	))

	node, err := snowflake.NewNode(8)
	require.NoError(t, err)

	providerID := node.Generate()
	ctx := authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: providerID,
		Role:       "doctor",
	})

	patientID := node.Generate()
	require.NoError(t, db.Create(&patientdomain.Patient{
		ID:         patientID,
		ProviderID: providerID,
		MRN:        "MRN-20260831-0001",
		Name:       "Asha Mwangi",
		Metadata:   datatypes.JSONMap{},
	}).Error)

	pharmacy := pharmacyservice.New(pharmacyservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	svc := prescriptionservice.New(prescriptionservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		AccessSvc:   access.New(access.Params{DB: db, Log: zap.NewNop()}),
		PharmacySvc: pharmacy,
	})

	return &fixture{db: db, node: node, svc: svc, pharmacy: pharmacy, ctx: ctx, patientID: patientID}
}

func (f *fixture) stockMedicine(t *testing.T, name string, quantity int64) pharmacydomain.Medicine {
	t.Helper()
	medicine, err := f.pharmacy.CreateMedicine(f.ctx, pharmacydomain.CreateMedicineRequest{
		Name:      name,
		Form:      "tablet",
		UnitPrice: 1.50,
	})
	require.NoError(t, err)
	if quantity > 0 {
		_, err = f.pharmacy.ReceiveBatch(f.ctx, pharmacydomain.ReceiveBatchRequest{
			MedicineID:  medicine.ID.String(),
			BatchNumber: "B-001",
			Quantity:    quantity,
		})
		require.NoError(t, err)
	}
	return medicine
}

func (f *fixture) prescribe(t *testing.T, items ...domain.PrescriptionItemInput) domain.Prescription {
	t.Helper()
	prescription, err := f.svc.Create(f.ctx, domain.CreatePrescriptionRequest{
		PatientID: f.patientID.String(),
		Items:     items,
	})
	require.NoError(t, err)
	return prescription
}

func (f *fixture) stockOf(t *testing.T, id snowflake.ID) int64 {
	t.Helper()
	var medicine pharmacydomain.Medicine
	require.NoError(t, f.db.First(&medicine, "id = ?", id).Error)
	return medicine.StockQuantity
}

func TestCreatePrescription(t *testing.T) {
	f := newFixture(t)
	medicine := f.stockMedicine(t, "Amoxicillin 500mg", 100)

	prescription := f.prescribe(t, domain.PrescriptionItemInput{
		MedicineID:   medicine.ID.String(),
		Dosage:       "500mg",
		Frequency:    "TDS",
		DurationDays: 5,
		Quantity:     15,
	})
	assert.Equal(t, domain.PrescriptionStatusActive, prescription.Status)
	require.Len(t, prescription.Items, 1)
	assert.Equal(t, int64(15), prescription.Items[0].Quantity)
}

func TestCreatePrescriptionRejectsEmptyItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreatePrescriptionRequest{
		PatientID: f.patientID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrEmptyItems)
}

func TestCreatePrescriptionRejectsBadItem(t *testing.T) {
	f := newFixture(t)
	medicine := f.stockMedicine(t, "Paracetamol 500mg", 50)

	_, err := f.svc.Create(f.ctx, domain.CreatePrescriptionRequest{
		PatientID: f.patientID.String(),
		Items: []domain.PrescriptionItemInput{{
			MedicineID: medicine.ID.String(),
			Dosage:     "500mg",
			Quantity:   0,
		}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)
}

func TestDispenseDecrementsStock(t *testing.T) {
	f := newFixture(t)
	medicine := f.stockMedicine(t, "Ibuprofen 200mg", 40)
	prescription := f.prescribe(t, domain.PrescriptionItemInput{
		MedicineID: medicine.ID.String(),
		Dosage:     "200mg",
		Quantity:   12,
	})

	dispensed, err := f.svc.Dispense(f.ctx, domain.DispensePrescriptionRequest{ID: prescription.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.PrescriptionStatusDispensed, dispensed.Status)
	require.NotNil(t, dispensed.DispensedAt)
	assert.Equal(t, int64(28), f.stockOf(t, medicine.ID))
}

func TestDispenseRollsBackOnShortStock(t *testing.T) {
	f := newFixture(t)
	plenty := f.stockMedicine(t, "Metformin 500mg", 100)
	scarce := f.stockMedicine(t, "Insulin Glargine", 2)
	prescription := f.prescribe(t,
		domain.PrescriptionItemInput{MedicineID: plenty.ID.String(), Dosage: "500mg", Quantity: 30},
		domain.PrescriptionItemInput{MedicineID: scarce.ID.String(), Dosage: "10 units", Quantity: 5},
	)

	_, err := f.svc.Dispense(f.ctx, domain.DispensePrescriptionRequest{ID: prescription.ID.String()})
	assert.ErrorIs(t, err, pharmacydomain.ErrInsufficientStock)

	// Nothing moved: the first item's decrement rolled back with the failure.
	assert.Equal(t, int64(100), f.stockOf(t, plenty.ID))
	assert.Equal(t, int64(2), f.stockOf(t, scarce.ID))

	reloaded, err := f.svc.GetByID(f.ctx, domain.GetPrescriptionRequest{ID: prescription.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.PrescriptionStatusActive, reloaded.Status)
}

func TestDispenseTwiceRejected(t *testing.T) {
	f := newFixture(t)
	medicine := f.stockMedicine(t, "Omeprazole 20mg", 60)
	prescription := f.prescribe(t, domain.PrescriptionItemInput{
		MedicineID: medicine.ID.String(),
		Dosage:     "20mg",
		Quantity:   14,
	})

	_, err := f.svc.Dispense(f.ctx, domain.DispensePrescriptionRequest{ID: prescription.ID.String()})
	require.NoError(t, err)

	_, err = f.svc.Dispense(f.ctx, domain.DispensePrescriptionRequest{ID: prescription.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotActive)
	assert.Equal(t, int64(46), f.stockOf(t, medicine.ID))
}

func TestCancelPrescription(t *testing.T) {
	f := newFixture(t)
	medicine := f.stockMedicine(t, "Cetirizine 10mg", 30)
	prescription := f.prescribe(t, domain.PrescriptionItemInput{
		MedicineID: medicine.ID.String(),
		Dosage:     "10mg",
		Quantity:   10,
	})

	cancelled, err := f.svc.Cancel(f.ctx, domain.CancelPrescriptionRequest{ID: prescription.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.PrescriptionStatusCancelled, cancelled.Status)

	_, err = f.svc.Dispense(f.ctx, domain.DispensePrescriptionRequest{ID: prescription.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotActive)
	assert.Equal(t, int64(30), f.stockOf(t, medicine.ID))
}
