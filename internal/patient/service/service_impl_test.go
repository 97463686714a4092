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
	"gorm.io/gorm"

	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/patient/domain"
	patientrepo "github.com/bizzy604/HIS-sub000/internal/patient/repository"
	patientservice "github.com/bizzy604/HIS-sub000/internal/patient/service"
	"github.com/bizzy604/HIS-sub000/internal/sequence"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:patientdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.Patient{}))
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

func newService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := patientservice.New(patientservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Allocator: sequence.NewAllocator(zap.NewNop()),
		Repo:      patientrepo.Provide(),
	})
	return svc, node
}

func authedCtx(node *snowflake.Node) context.Context {
	return authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: node.Generate(),
		Role:       "doctor",
	})
}

func TestCreatePatientMintsMRN(t *testing.T) {
	svc, node := newService(t)
	ctx := authedCtx(node)

	today := time.Now().UTC().Format("20060102")

	first, err := svc.Create(ctx, domain.CreatePatientRequest{Name: "Asha Mwangi"})
	require.NoError(t, err)
	assert.Equal(t, "MRN-"+today+"-0001", first.MRN)

	second, err := svc.Create(ctx, domain.CreatePatientRequest{Name: "Brian Otieno"})
	require.NoError(t, err)
	assert.Equal(t, "MRN-"+today+"-0002", second.MRN)
}

func TestCreatePatientRequiresName(t *testing.T) {
	svc, node := newService(t)
	ctx := authedCtx(node)

	_, err := svc.Create(ctx, domain.CreatePatientRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCreatePatientRequiresAuthentication(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), domain.CreatePatientRequest{Name: "Asha Mwangi"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestGetPatientScopedToProvider(t *testing.T) {
	svc, node := newService(t)
	ownerCtx := authedCtx(node)

	created, err := svc.Create(ownerCtx, domain.CreatePatientRequest{Name: "Asha Mwangi"})
	require.NoError(t, err)

	got, err := svc.GetByID(ownerCtx, domain.GetPatientRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.MRN, got.MRN)

	otherCtx := authedCtx(node)
	_, err = svc.GetByID(otherCtx, domain.GetPatientRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound, "another provider's patient reads as missing")
}

func TestUpdatePatientPartial(t *testing.T) {
	svc, node := newService(t)
	ctx := authedCtx(node)

	created, err := svc.Create(ctx, domain.CreatePatientRequest{
		Name:  "Asha Mwangi",
		Phone: "+254700000001",
	})
	require.NoError(t, err)

	phone := "+254700000002"
	updated, err := svc.Update(ctx, domain.UpdatePatientRequest{
		ID:    created.ID.String(),
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, created.Name, updated.Name, "unset fields stay untouched")
}

func TestDeletePatient(t *testing.T) {
	svc, node := newService(t)
	ctx := authedCtx(node)

	created, err := svc.Create(ctx, domain.CreatePatientRequest{Name: "Asha Mwangi"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.DeletePatientRequest{ID: created.ID.String()}))

	_, err = svc.GetByID(ctx, domain.GetPatientRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
