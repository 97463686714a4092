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
	"github.com/bizzy604/HIS-sub000/internal/laborder/domain"
	laborderservice "github.com/bizzy604/HIS-sub000/internal/laborder/service"
	patientdomain "github.com/bizzy604/HIS-sub000/internal/patient/domain"
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

	dsn := fmt.Sprintf("file:labdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&patientdomain.Patient{}, &domain.LabOrder{}))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	providerID := node.Generate()
	ctx := authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: providerID,
		Role:       "lab_technician",
	})

	patientID := node.Generate()
	require.NoError(t, db.Create(&patientdomain.Patient{
		ID:         patientID,
		ProviderID: providerID,
		MRN:        "MRN-20260831-0001",
		Name:       "Asha Mwangi",
		Metadata:   datatypes.JSONMap{},
	}).Error)

	svc := laborderservice.New(laborderservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		AccessSvc: access.New(access.Params{DB: db, Log: zap.NewNop()}),
	})

	return &fixture{db: db, node: node, svc: svc, ctx: ctx, patientID: patientID}
}

func (f *fixture) order(t *testing.T) domain.LabOrder {
	t.Helper()
	order, err := f.svc.Create(f.ctx, domain.CreateLabOrderRequest{
		PatientID: f.patientID.String(),
		TestName:  "Complete Blood Count",
		TestCode:  "CBC",
	})
	require.NoError(t, err)
	return order
}

func TestCreateLabOrderDefaults(t *testing.T) {
	f := newFixture(t)

	order := f.order(t)
	assert.Equal(t, domain.LabOrderStatusOrdered, order.Status)
	assert.Equal(t, "ROUTINE", order.Priority)
	assert.False(t, order.OrderedAt.IsZero())
}

func TestCreateLabOrderRejectsEmptyTest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateLabOrderRequest{
		PatientID: f.patientID.String(),
		TestName:  "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTest)
}

func TestCreateLabOrderRejectsBadPriority(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateLabOrderRequest{
		PatientID: f.patientID.String(),
		TestName:  "Lipid Panel",
		Priority:  "WHENEVER",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTest)
}

func TestTransitionLabOrder(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	moved, err := f.svc.Transition(f.ctx, domain.TransitionLabOrderRequest{
		ID:     order.ID.String(),
		Status: "in_progress",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LabOrderStatusInProgress, moved.Status)
}

func TestTransitionCannotComplete(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	// Completion is only reachable by recording results.
	_, err := f.svc.Transition(f.ctx, domain.TransitionLabOrderRequest{
		ID:     order.ID.String(),
		Status: "COMPLETED",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	_, err := f.svc.Transition(f.ctx, domain.TransitionLabOrderRequest{
		ID:     order.ID.String(),
		Status: "DONE",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRecordResultsCompletesOrder(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	_, err := f.svc.Transition(f.ctx, domain.TransitionLabOrderRequest{
		ID:     order.ID.String(),
		Status: "IN_PROGRESS",
	})
	require.NoError(t, err)

	done, err := f.svc.RecordResults(f.ctx, domain.RecordResultsRequest{
		ID:      order.ID.String(),
		Results: map[string]any{"wbc": 6.1, "rbc": 4.9},
		Notes:   "within normal limits",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LabOrderStatusCompleted, done.Status)
	assert.Equal(t, "within normal limits", done.Notes)
	require.NotNil(t, done.CompletedAt)
	assert.Contains(t, done.Results, "wbc")
}

func TestRecordResultsRejectsEmptyResults(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	_, err := f.svc.RecordResults(f.ctx, domain.RecordResultsRequest{
		ID:      order.ID.String(),
		Results: map[string]any{},
	})
	assert.ErrorIs(t, err, domain.ErrEmptyResults)
}

func TestRecordResultsOnCancelledOrder(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	_, err := f.svc.Transition(f.ctx, domain.TransitionLabOrderRequest{
		ID:     order.ID.String(),
		Status: "CANCELLED",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordResults(f.ctx, domain.RecordResultsRequest{
		ID:      order.ID.String(),
		Results: map[string]any{"wbc": 6.1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLabOrderScopedToProvider(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	otherCtx := authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: f.node.Generate(),
		Role:       "lab_technician",
	})
	_, err := f.svc.GetByID(otherCtx, domain.GetLabOrderRequest{ID: order.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
