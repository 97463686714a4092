package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	providerdomain "github.com/bizzy604/HIS-sub000/internal/provider/domain"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectPatient      = "patient"
	ObjectProgram      = "program"
	ObjectEnrollment   = "enrollment"
	ObjectAppointment  = "appointment"
	ObjectVisit        = "visit"
	ObjectVitals       = "vitals"
	ObjectPrescription = "prescription"
	ObjectLabOrder     = "lab_order"
	ObjectMedicine     = "medicine"
	ObjectBill         = "bill"
	ObjectAnalytics    = "analytics"
	ObjectAuditLog     = "audit_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionAppointmentTransition = "appointment.transition"
	ActionEnrollmentClose       = "enrollment.close"
	ActionVitalsRecord          = "vitals.record"
	ActionPrescriptionDispense  = "prescription.dispense"
	ActionPrescriptionCancel    = "prescription.cancel"
	ActionLabOrderTransition    = "lab_order.transition"
	ActionLabOrderRecordResults = "lab_order.record_results"
	ActionMedicineReceiveBatch  = "medicine.receive_batch"
	ActionBillRecordPayment     = "bill.record_payment"
	ActionBillCancel            = "bill.cancel"
	ActionAnalyticsView         = "analytics.view"
	ActionAuditLogView          = "audit_log.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, object string, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	identity, ok := authctx.IdentityFromContext(ctx)
	if !ok {
		return ErrInvalidActor
	}
	role := strings.ToLower(strings.TrimSpace(identity.Role))
	if role == "" {
		return ErrForbidden
	}

	subject := fmt.Sprintf("provider:%s", identity.ProviderID.String())
	roleName := fmt.Sprintf("role:%s", role)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, identity, object, action)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps the subject's role link in sync with the providers
// table; a role change on the provider row drops the stale link.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, identity authctx.Identity, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := object
	_ = s.auditSvc.Record(ctx, identity.ProviderID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
		"role":   identity.Role,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	role := func(name string) string { return "role:" + name }

	policies := [][]string{
		// Admins hold every action on every object.
		{role(providerdomain.RoleAdmin), ObjectPatient, "*"},
		{role(providerdomain.RoleAdmin), ObjectProgram, "*"},
		{role(providerdomain.RoleAdmin), ObjectEnrollment, "*"},
		{role(providerdomain.RoleAdmin), ObjectAppointment, "*"},
		{role(providerdomain.RoleAdmin), ObjectVisit, "*"},
		{role(providerdomain.RoleAdmin), ObjectVitals, "*"},
		{role(providerdomain.RoleAdmin), ObjectPrescription, "*"},
		{role(providerdomain.RoleAdmin), ObjectLabOrder, "*"},
		{role(providerdomain.RoleAdmin), ObjectMedicine, "*"},
		{role(providerdomain.RoleAdmin), ObjectBill, "*"},
		{role(providerdomain.RoleAdmin), ObjectAnalytics, "*"},
		{role(providerdomain.RoleAdmin), ObjectAuditLog, "*"},

		// Doctors run the clinical workflow end to end.
		{role(providerdomain.RoleDoctor), ObjectPatient, ActionView},
		{role(providerdomain.RoleDoctor), ObjectPatient, ActionCreate},
		{role(providerdomain.RoleDoctor), ObjectPatient, ActionUpdate},
		{role(providerdomain.RoleDoctor), ObjectProgram, ActionView},
		{role(providerdomain.RoleDoctor), ObjectProgram, ActionCreate},
		{role(providerdomain.RoleDoctor), ObjectProgram, ActionUpdate},
		{role(providerdomain.RoleDoctor), ObjectEnrollment, ActionView},
		{role(providerdomain.RoleDoctor), ObjectEnrollment, ActionCreate},
		{role(providerdomain.RoleDoctor), ObjectEnrollment, ActionEnrollmentClose},
		{role(providerdomain.RoleDoctor), ObjectAppointment, ActionView},
		{role(providerdomain.RoleDoctor), ObjectAppointment, ActionCreate},
		{role(providerdomain.RoleDoctor), ObjectAppointment, ActionUpdate},
		{role(providerdomain.RoleDoctor), ObjectAppointment, ActionAppointmentTransition},
		{role(providerdomain.RoleDoctor), ObjectVisit, ActionView},
		{role(providerdomain.RoleDoctor), ObjectVisit, ActionCreate},
		{role(providerdomain.RoleDoctor), ObjectVisit, ActionUpdate},
		{role(providerdomain.RoleDoctor), ObjectVitals, ActionView},
		{role(providerdomain.RoleDoctor), ObjectVitals, ActionVitalsRecord},
		{role(providerdomain.RoleDoctor), ObjectPrescription, ActionView},
		{role(providerdomain.RoleDoctor), ObjectPrescription, ActionCreate},
		{role(providerdomain.RoleDoctor), ObjectPrescription, ActionPrescriptionCancel},
		{role(providerdomain.RoleDoctor), ObjectLabOrder, ActionView},
		{role(providerdomain.RoleDoctor), ObjectLabOrder, ActionCreate},
		{role(providerdomain.RoleDoctor), ObjectLabOrder, ActionLabOrderTransition},
		{role(providerdomain.RoleDoctor), ObjectLabOrder, ActionLabOrderRecordResults},
		{role(providerdomain.RoleDoctor), ObjectMedicine, ActionView},
		{role(providerdomain.RoleDoctor), ObjectBill, ActionView},
		{role(providerdomain.RoleDoctor), ObjectAnalytics, ActionAnalyticsView},

		// Nurses record observations and move the day's queue along.
		{role(providerdomain.RoleNurse), ObjectPatient, ActionView},
		{role(providerdomain.RoleNurse), ObjectPatient, ActionUpdate},
		{role(providerdomain.RoleNurse), ObjectAppointment, ActionView},
		{role(providerdomain.RoleNurse), ObjectAppointment, ActionAppointmentTransition},
		{role(providerdomain.RoleNurse), ObjectVisit, ActionView},
		{role(providerdomain.RoleNurse), ObjectVitals, ActionView},
		{role(providerdomain.RoleNurse), ObjectVitals, ActionVitalsRecord},
		{role(providerdomain.RoleNurse), ObjectPrescription, ActionView},
		{role(providerdomain.RoleNurse), ObjectLabOrder, ActionView},

		// Pharmacists own inventory and dispensing.
		{role(providerdomain.RolePharmacist), ObjectMedicine, ActionView},
		{role(providerdomain.RolePharmacist), ObjectMedicine, ActionCreate},
		{role(providerdomain.RolePharmacist), ObjectMedicine, ActionUpdate},
		{role(providerdomain.RolePharmacist), ObjectMedicine, ActionMedicineReceiveBatch},
		{role(providerdomain.RolePharmacist), ObjectPrescription, ActionView},
		{role(providerdomain.RolePharmacist), ObjectPrescription, ActionPrescriptionDispense},

		// Receptionists handle scheduling and the front desk.
		{role(providerdomain.RoleReceptionist), ObjectPatient, ActionView},
		{role(providerdomain.RoleReceptionist), ObjectPatient, ActionCreate},
		{role(providerdomain.RoleReceptionist), ObjectAppointment, ActionView},
		{role(providerdomain.RoleReceptionist), ObjectAppointment, ActionCreate},
		{role(providerdomain.RoleReceptionist), ObjectAppointment, ActionUpdate},
		{role(providerdomain.RoleReceptionist), ObjectAppointment, ActionAppointmentTransition},
		{role(providerdomain.RoleReceptionist), ObjectBill, ActionView},
		{role(providerdomain.RoleReceptionist), ObjectBill, ActionCreate},
		{role(providerdomain.RoleReceptionist), ObjectBill, ActionBillRecordPayment},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization.service",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
