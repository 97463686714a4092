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
	visitdomain "github.com/bizzy604/HIS-sub000/internal/visit/domain"
	"github.com/bizzy604/HIS-sub000/internal/vitals/domain"
	vitalsservice "github.com/bizzy604/HIS-sub000/internal/vitals/service"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       domain.Service
	ctx       context.Context
	patientID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:vitalsdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&patientdomain.Patient{}, &visitdomain.Visit{}, &domain.VitalSign{}))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	providerID := node.Generate()
	ctx := authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: providerID,
		Role:       "nurse",
	})

	patientID := node.Generate()
	require.NoError(t, db.Create(&patientdomain.Patient{
		ID:         patientID,
		ProviderID: providerID,
		MRN:        "MRN-20260831-0001",
		Name:       "Asha Mwangi",
		Metadata:   datatypes.JSONMap{},
	}).Error)

	svc := vitalsservice.New(vitalsservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		AccessSvc: access.New(access.Params{DB: db, Log: zap.NewNop()}),
	})

	return &fixture{db: db, node: node, svc: svc, ctx: ctx, patientID: patientID}
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }

func TestRecordVitals(t *testing.T) {
	f := newFixture(t)

	reading, err := f.svc.Record(f.ctx, domain.RecordVitalsRequest{
		PatientID:        f.patientID.String(),
		TemperatureC:     ptrF(37.2),
		PulseBPM:         ptrI(74),
		SystolicBP:       ptrI(120),
		DiastolicBP:      ptrI(80),
		OxygenSaturation: ptrF(98),
	})
	require.NoError(t, err)
	assert.NotZero(t, reading.ID)
	assert.Equal(t, f.patientID, reading.PatientID)
	assert.Equal(t, 37.2, *reading.TemperatureC)
	assert.Nil(t, reading.VisitID)
	assert.False(t, reading.RecordedAt.IsZero())
}

func TestRecordVitalsRejectsEmptyReading(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(f.ctx, domain.RecordVitalsRequest{PatientID: f.patientID.String()})
	assert.ErrorIs(t, err, domain.ErrEmptyReading)
}

func TestRecordVitalsRejectsImplausibleValues(t *testing.T) {
	f := newFixture(t)

	cases := []domain.RecordVitalsRequest{
		{TemperatureC: ptrF(50)},
		{TemperatureC: ptrF(20)},
		{PulseBPM: ptrI(0)},
		{PulseBPM: ptrI(400)},
		{OxygenSaturation: ptrF(120)},
		{SystolicBP: ptrI(-10)},
		{WeightKG: ptrF(900)},
		{HeightCM: ptrF(0)},
	}
	for _, req := range cases {
		req.PatientID = f.patientID.String()
		_, err := f.svc.Record(f.ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidReading)
	}
}

func TestRecordVitalsLinksVisit(t *testing.T) {
	f := newFixture(t)

	providerID, _ := authctx.ProviderIDFromContext(f.ctx)
	visitID := f.node.Generate()
	require.NoError(t, f.db.Create(&visitdomain.Visit{
		ID:         visitID,
		ProviderID: providerID,
		PatientID:  f.patientID,
		VisitDate:  time.Now().UTC(),
	}).Error)

	reading, err := f.svc.Record(f.ctx, domain.RecordVitalsRequest{
		PatientID: f.patientID.String(),
		VisitID:   visitID.String(),
		PulseBPM:  ptrI(88),
	})
	require.NoError(t, err)
	require.NotNil(t, reading.VisitID)
	assert.Equal(t, visitID, *reading.VisitID)
}

func TestRecordVitalsRejectsUnknownVisit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(f.ctx, domain.RecordVitalsRequest{
		PatientID: f.patientID.String(),
		VisitID:   f.node.Generate().String(),
		PulseBPM:  ptrI(88),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidVisit)
}

func TestRecordVitalsRejectsForeignPatient(t *testing.T) {
	f := newFixture(t)

	otherCtx := authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: f.node.Generate(),
		Role:       "nurse",
	})
	_, err := f.svc.Record(otherCtx, domain.RecordVitalsRequest{
		PatientID: f.patientID.String(),
		PulseBPM:  ptrI(70),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPatient)
}

func TestListVitalsFiltersByPatientAndTime(t *testing.T) {
	f := newFixture(t)

	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		_, err := f.svc.Record(f.ctx, domain.RecordVitalsRequest{
			PatientID:  f.patientID.String(),
			PulseBPM:   ptrI(int64(70 + i)),
			RecordedAt: &at,
		})
		require.NoError(t, err)
	}

	from := base.Add(30 * time.Minute)
	to := base.Add(3 * time.Hour)
	resp, err := f.svc.List(f.ctx, domain.ListVitalsRequest{
		PatientID: f.patientID.String(),
		From:      &from,
		To:        &to,
	})
	require.NoError(t, err)
	require.Len(t, resp.Vitals, 2)
	// Newest first.
	assert.Equal(t, int64(72), *resp.Vitals[0].PulseBPM)
	assert.Equal(t, int64(71), *resp.Vitals[1].PulseBPM)
}
