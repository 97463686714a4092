package authorization_test

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
	"github.com/bizzy604/HIS-sub000/internal/authorization"
)

func newService(t *testing.T) authorization.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:authzdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)

	return authorization.NewService(authorization.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
}

func roleCtx(t *testing.T, role string) context.Context {
	t.Helper()
	node, err := snowflake.NewNode(9)
	require.NoError(t, err)
	return authctx.WithIdentity(context.Background(), authctx.Identity{
		ProviderID: node.Generate(),
		Role:       role,
	})
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	svc := newService(t)

	cases := []struct {
		role    string
		object  string
		action  string
		allowed bool
	}{
		{"admin", authorization.ObjectPatient, authorization.ActionDelete, true},
		{"admin", authorization.ObjectBill, authorization.ActionBillCancel, true},
		{"admin", authorization.ObjectAuditLog, authorization.ActionAuditLogView, true},

		{"doctor", authorization.ObjectPatient, authorization.ActionCreate, true},
		{"doctor", authorization.ObjectLabOrder, authorization.ActionLabOrderRecordResults, true},
		{"doctor", authorization.ObjectPrescription, authorization.ActionPrescriptionDispense, false},
		{"doctor", authorization.ObjectPatient, authorization.ActionDelete, false},
		{"doctor", authorization.ObjectAuditLog, authorization.ActionAuditLogView, false},

		{"nurse", authorization.ObjectVitals, authorization.ActionVitalsRecord, true},
		{"nurse", authorization.ObjectAppointment, authorization.ActionAppointmentTransition, true},
		{"nurse", authorization.ObjectPatient, authorization.ActionCreate, false},
		{"nurse", authorization.ObjectBill, authorization.ActionView, false},

		{"pharmacist", authorization.ObjectPrescription, authorization.ActionPrescriptionDispense, true},
		{"pharmacist", authorization.ObjectMedicine, authorization.ActionMedicineReceiveBatch, true},
		{"pharmacist", authorization.ObjectPatient, authorization.ActionCreate, false},
		{"pharmacist", authorization.ObjectVitals, authorization.ActionVitalsRecord, false},

		{"receptionist", authorization.ObjectBill, authorization.ActionBillRecordPayment, true},
		{"receptionist", authorization.ObjectAppointment, authorization.ActionCreate, true},
		{"receptionist", authorization.ObjectVitals, authorization.ActionVitalsRecord, false},
		{"receptionist", authorization.ObjectBill, authorization.ActionBillCancel, false},
	}

	for _, tc := range cases {
		name := fmt.Sprintf("%s_%s_%s", tc.role, tc.object, tc.action)
		t.Run(name, func(t *testing.T) {
			err := svc.Authorize(roleCtx(t, tc.role), tc.object, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, authorization.ErrForbidden)
			}
		})
	}
}

func TestAuthorizeUnknownRoleDenied(t *testing.T) {
	svc := newService(t)

	err := svc.Authorize(roleCtx(t, "janitor"), authorization.ObjectPatient, authorization.ActionView)
	assert.ErrorIs(t, err, authorization.ErrForbidden)
}

func TestAuthorizeRequiresIdentity(t *testing.T) {
	svc := newService(t)

	err := svc.Authorize(context.Background(), authorization.ObjectPatient, authorization.ActionView)
	assert.ErrorIs(t, err, authorization.ErrInvalidActor)
}

func TestAuthorizeRejectsEmptyObjectOrAction(t *testing.T) {
	svc := newService(t)
	ctx := roleCtx(t, "admin")

	assert.ErrorIs(t, svc.Authorize(ctx, "  ", authorization.ActionView), authorization.ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, authorization.ObjectPatient, ""), authorization.ErrInvalidAction)
}

func TestAuthorizeFollowsRoleChange(t *testing.T) {
	svc := newService(t)

	node, err := snowflake.NewNode(10)
	require.NoError(t, err)
	providerID := node.Generate()

	asNurse := authctx.WithIdentity(context.Background(), authctx.Identity{ProviderID: providerID, Role: "nurse"})
	require.NoError(t, svc.Authorize(asNurse, authorization.ObjectVitals, authorization.ActionVitalsRecord))

	// Same provider re-resolved with a new role; the stale nurse link is dropped.
	asReceptionist := authctx.WithIdentity(context.Background(), authctx.Identity{ProviderID: providerID, Role: "receptionist"})
	require.NoError(t, svc.Authorize(asReceptionist, authorization.ObjectBill, authorization.ActionBillRecordPayment))
	assert.ErrorIs(t, svc.Authorize(asReceptionist, authorization.ObjectVitals, authorization.ActionVitalsRecord), authorization.ErrForbidden)
}
