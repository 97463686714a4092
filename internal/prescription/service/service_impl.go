package service

import (
	"context"
	"strings"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/access"
	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	pharmacydomain "github.com/bizzy604/HIS-sub000/internal/pharmacy/domain"
	"github.com/bizzy604/HIS-sub000/internal/prescription/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	AccessSvc   access.Service
	PharmacySvc pharmacydomain.Service
	AuditSvc    auditdomain.Service `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	accessSvc   access.Service
	pharmacySvc pharmacydomain.Service
	auditSvc    auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("prescription.service"),
		genID:       p.GenID,
		accessSvc:   p.AccessSvc,
		pharmacySvc: p.PharmacySvc,
		auditSvc:    p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePrescriptionRequest) (domain.Prescription, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Prescription{}, domain.ErrUnauthenticated
	}

	patientID, err := snowflake.ParseString(strings.TrimSpace(req.PatientID))
	if err != nil || patientID == 0 {
		return domain.Prescription{}, domain.ErrInvalidPatient
	}
	if len(req.Items) == 0 {
		return domain.Prescription{}, domain.ErrEmptyItems
	}

	if err := s.accessSvc.CanAccess(ctx, access.ResourcePatient, patientID); err != nil {
		switch err {
		case access.ErrNotFound, access.ErrForbidden:
			return domain.Prescription{}, domain.ErrInvalidPatient
		default:
			return domain.Prescription{}, err
		}
	}

	now := time.Now().UTC()
	prescription := domain.Prescription{
		ID:         s.genID.Generate(),
		ProviderID: providerID,
		PatientID:  patientID,
		Status:     domain.PrescriptionStatusActive,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if raw := strings.TrimSpace(req.VisitID); raw != "" {
		visitID, err := snowflake.ParseString(raw)
		if err != nil || visitID == 0 {
			return domain.Prescription{}, domain.ErrInvalidID
		}
		prescription.VisitID = &visitID
	}

	for _, item := range req.Items {
		medicineID, err := snowflake.ParseString(strings.TrimSpace(item.MedicineID))
		if err != nil || medicineID == 0 || item.Quantity <= 0 || strings.TrimSpace(item.Dosage) == "" {
			return domain.Prescription{}, domain.ErrInvalidItem
		}
		prescription.Items = append(prescription.Items, domain.PrescriptionItem{
			ID:             s.genID.Generate(),
			PrescriptionID: prescription.ID,
			MedicineID:     medicineID,
			Dosage:         strings.TrimSpace(item.Dosage),
			Frequency:      strings.TrimSpace(item.Frequency),
			DurationDays:   item.DurationDays,
			Quantity:       item.Quantity,
			Instructions:   strings.TrimSpace(item.Instructions),
			CreatedAt:      now,
		})
	}

	if err := s.db.WithContext(ctx).Create(&prescription).Error; err != nil {
		return domain.Prescription{}, err
	}

	if s.auditSvc != nil {
		targetID := prescription.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "prescription.create", "prescription", &targetID, map[string]any{
			"patient_id": patientID.String(),
			"items":      len(prescription.Items),
		})
	}

	return prescription, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPrescriptionRequest) (domain.Prescription, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Prescription{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Prescription{}, err
	}

	return s.load(ctx, s.db, providerID, id)
}

func (s *Service) List(ctx context.Context, req domain.ListPrescriptionRequest) (domain.ListPrescriptionResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListPrescriptionResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.Prescription{}).
		Preload("Items").
		Where("provider_id = ?", providerID)
	if raw := strings.TrimSpace(req.PatientID); raw != "" {
		patientID, err := snowflake.ParseString(raw)
		if err != nil || patientID == 0 {
			return domain.ListPrescriptionResponse{}, domain.ErrInvalidPatient
		}
		stmt = stmt.Where("patient_id = ?", patientID)
	}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var prescriptions []domain.Prescription
	if err := stmt.Order("created_at desc, id desc").Find(&prescriptions).Error; err != nil {
		return domain.ListPrescriptionResponse{}, err
	}
	return domain.ListPrescriptionResponse{Prescriptions: prescriptions}, nil
}

func (s *Service) Dispense(ctx context.Context, req domain.DispensePrescriptionRequest) (domain.Prescription, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Prescription{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Prescription{}, err
	}

	now := time.Now().UTC()
	// Status flip and every stock decrement commit or roll back together, so
	// a short medicine leaves both the prescription and the inventory untouched.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prescription, err := s.load(ctx, tx, providerID, id)
		if err != nil {
			return err
		}
		if prescription.Status != domain.PrescriptionStatusActive {
			return domain.ErrNotActive
		}

		for _, item := range prescription.Items {
			if err := s.pharmacySvc.DecrementStock(ctx, tx, item.MedicineID, item.Quantity); err != nil {
				return err
			}
		}

		res := tx.Exec(
			`UPDATE prescriptions SET status = 'DISPENSED', dispensed_at = ?, updated_at = ? WHERE provider_id = ? AND id = ? AND status = 'ACTIVE'`,
			now, now, providerID, id,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotActive
		}
		return nil
	})
	if err != nil {
		return domain.Prescription{}, err
	}

	updated, err := s.load(ctx, s.db, providerID, id)
	if err != nil {
		return domain.Prescription{}, err
	}

	if s.auditSvc != nil {
		targetID := updated.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "prescription.dispense", "prescription", &targetID, map[string]any{
			"patient_id": updated.PatientID.String(),
		})
	}

	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, req domain.CancelPrescriptionRequest) (domain.Prescription, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Prescription{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Prescription{}, err
	}

	res := s.db.WithContext(ctx).Exec(
		`UPDATE prescriptions SET status = 'CANCELLED', updated_at = ? WHERE provider_id = ? AND id = ? AND status = 'ACTIVE'`,
		time.Now().UTC(), providerID, id,
	)
	if res.Error != nil {
		return domain.Prescription{}, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.load(ctx, s.db, providerID, id); err != nil {
			return domain.Prescription{}, err
		}
		return domain.Prescription{}, domain.ErrNotActive
	}

	return s.load(ctx, s.db, providerID, id)
}

func (s *Service) load(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID) (domain.Prescription, error) {
	var prescription domain.Prescription
	err := db.WithContext(ctx).
		Preload("Items").
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&prescription).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Prescription{}, domain.ErrNotFound
		}
		return domain.Prescription{}, err
	}
	return prescription, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
