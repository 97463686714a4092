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
	"github.com/bizzy604/HIS-sub000/internal/enrollment/domain"
	enrollmentservice "github.com/bizzy604/HIS-sub000/internal/enrollment/service"
	patientdomain "github.com/bizzy604/HIS-sub000/internal/patient/domain"
	programdomain "github.com/bizzy604/HIS-sub000/internal/program/domain"
)

type fixture struct {
	svc       domain.Service
	ctx       context.Context
	node      *snowflake.Node
	patientID snowflake.ID
	programID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:enrolldb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&patientdomain.Patient{},
		&programdomain.Program{},
		&domain.Enrollment{},
	))

	node, err := snowflake.NewNode(5)
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

	programID := node.Generate()
	require.NoError(t, db.Create(&programdomain.Program{
		ID:         programID,
		ProviderID: providerID,
		Name:       "Antenatal care",
		Active:     true,
	}).Error)

	svc := enrollmentservice.New(enrollmentservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		AccessSvc: access.New(access.Params{DB: db, Log: zap.NewNop()}),
	})

	return &fixture{svc: svc, ctx: ctx, node: node, patientID: patientID, programID: programID}
}

func TestEnroll(t *testing.T) {
	f := newFixture(t)

	enrollment, err := f.svc.Enroll(f.ctx, domain.EnrollRequest{
		PatientID: f.patientID.String(),
		ProgramID: f.programID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentStatusActive, enrollment.Status)
	assert.False(t, enrollment.EnrolledAt.IsZero())
}

func TestEnrollTwiceRejected(t *testing.T) {
	f := newFixture(t)

	req := domain.EnrollRequest{
		PatientID: f.patientID.String(),
		ProgramID: f.programID.String(),
	}

	_, err := f.svc.Enroll(f.ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Enroll(f.ctx, req)
	assert.ErrorIs(t, err, domain.ErrAlreadyEnrolled)
}

func TestEnrollUnknownProgram(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Enroll(f.ctx, domain.EnrollRequest{
		PatientID: f.patientID.String(),
		ProgramID: f.node.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProgram)
}

func TestUpdateStatusClosesEnrollment(t *testing.T) {
	f := newFixture(t)

	enrollment, err := f.svc.Enroll(f.ctx, domain.EnrollRequest{
		PatientID: f.patientID.String(),
		ProgramID: f.programID.String(),
	})
	require.NoError(t, err)

	closed, err := f.svc.UpdateStatus(f.ctx, domain.UpdateEnrollmentStatusRequest{
		ID:     enrollment.ID.String(),
		Status: "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentStatusCompleted, closed.Status)
	require.NotNil(t, closed.EndedAt)

	_, err = f.svc.UpdateStatus(f.ctx, domain.UpdateEnrollmentStatusRequest{
		ID:     enrollment.ID.String(),
		Status: "WITHDRAWN",
	})
	assert.ErrorIs(t, err, domain.ErrNotActive, "closed enrollments cannot change status again")
}

func TestUpdateStatusRejectsActiveTarget(t *testing.T) {
	f := newFixture(t)

	enrollment, err := f.svc.Enroll(f.ctx, domain.EnrollRequest{
		PatientID: f.patientID.String(),
		ProgramID: f.programID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(f.ctx, domain.UpdateEnrollmentStatusRequest{
		ID:     enrollment.ID.String(),
		Status: "ACTIVE",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
