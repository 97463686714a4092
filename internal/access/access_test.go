package access_test

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
)

func setup(t *testing.T) (access.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:accessdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&patientdomain.Patient{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := access.New(access.Params{DB: db, Log: zap.NewNop()})
	return svc, db, node
}

func ctxFor(providerID snowflake.ID) context.Context {
	return authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: providerID,
		Role:       "doctor",
	})
}

func TestCanAccessOwnRow(t *testing.T) {
	svc, db, node := setup(t)

	ownerID := node.Generate()
	patientID := node.Generate()
	require.NoError(t, db.Create(&patientdomain.Patient{
		ID:         patientID,
		ProviderID: ownerID,
		MRN:        "MRN-20260831-0001",
		Name:       "Asha Mwangi",
		Metadata:   datatypes.JSONMap{},
	}).Error)

	assert.NoError(t, svc.CanAccess(ctxFor(ownerID), access.ResourcePatient, patientID))
}

func TestCanAccessMissingRowIsNotFound(t *testing.T) {
	svc, _, node := setup(t)

	err := svc.CanAccess(ctxFor(node.Generate()), access.ResourcePatient, node.Generate())
	assert.ErrorIs(t, err, access.ErrNotFound)
}

func TestCanAccessForeignRowIsForbidden(t *testing.T) {
	svc, db, node := setup(t)

	ownerID := node.Generate()
	patientID := node.Generate()
	require.NoError(t, db.Create(&patientdomain.Patient{
		ID:         patientID,
		ProviderID: ownerID,
		MRN:        "MRN-20260831-0001",
		Name:       "Asha Mwangi",
		Metadata:   datatypes.JSONMap{},
	}).Error)

	err := svc.CanAccess(ctxFor(node.Generate()), access.ResourcePatient, patientID)
	assert.ErrorIs(t, err, access.ErrForbidden, "existing but foreign rows are forbidden, not missing")
}

func TestCanAccessUnauthenticated(t *testing.T) {
	svc, _, node := setup(t)

	err := svc.CanAccess(context.Background(), access.ResourcePatient, node.Generate())
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
}

func TestCanAccessUnknownResource(t *testing.T) {
	svc, _, node := setup(t)

	err := svc.CanAccess(ctxFor(node.Generate()), access.Resource("invoice"), node.Generate())
	assert.ErrorIs(t, err, access.ErrUnknownResource)
}
