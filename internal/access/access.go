// Package access centralizes row-level ownership checks. A single capability
// check, parameterized by resource type, replaces per-route lookups and keeps
// "no such row" distinct from "row owned by someone else".
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resource identifies an ownership-scoped resource type.
type Resource string

const (
	ResourcePatient      Resource = "patient"
	ResourceProgram      Resource = "program"
	ResourceAppointment  Resource = "appointment"
	ResourceVisit        Resource = "visit"
	ResourcePrescription Resource = "prescription"
	ResourceLabOrder     Resource = "lab_order"
	ResourceBill         Resource = "bill"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not_found")
	ErrUnknownResource = errors.New("unknown_resource")
)

// resourceTables maps a resource to its table; every table carries an indexed
// provider_id column.
var resourceTables = map[Resource]string{
	ResourcePatient:      "patients",
	ResourceProgram:      "programs",
	ResourceAppointment:  "appointments",
	ResourceVisit:        "medical_visits",
	ResourcePrescription: "prescriptions",
	ResourceLabOrder:     "lab_orders",
	ResourceBill:         "bills",
}

type Service interface {
	// CanAccess returns nil when the authenticated provider owns the row,
	// ErrNotFound when no such row exists, and ErrForbidden when the row
	// belongs to a different provider.
	CanAccess(ctx context.Context, resource Resource, id snowflake.ID) error
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) Service {
	return &service{
		db:  p.DB,
		log: p.Log.Named("access.service"),
	}
}

func (s *service) CanAccess(ctx context.Context, resource Resource, id snowflake.ID) error {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	table, ok := resourceTables[resource]
	if !ok {
		return ErrUnknownResource
	}

	var row struct {
		OwnerID snowflake.ID `gorm:"column:provider_id"`
	}
	err := s.db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT provider_id FROM %s WHERE id = ? LIMIT 1`, table),
		id,
	).Scan(&row).Error
	if err != nil {
		return err
	}
	if row.OwnerID == 0 {
		return ErrNotFound
	}
	if row.OwnerID != providerID {
		return ErrForbidden
	}
	return nil
}

var Module = fx.Module("access.service",
	fx.Provide(New),
)
