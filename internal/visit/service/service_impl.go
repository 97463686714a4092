package service

import (
	"context"
	"strings"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/access"
	appointmentdomain "github.com/bizzy604/HIS-sub000/internal/appointment/domain"
	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/visit/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	AccessSvc access.Service
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	accessSvc access.Service
	auditSvc  auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("visit.service"),
		genID:     p.GenID,
		accessSvc: p.AccessSvc,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateVisitRequest) (domain.Visit, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Visit{}, domain.ErrUnauthenticated
	}

	patientID, err := snowflake.ParseString(strings.TrimSpace(req.PatientID))
	if err != nil || patientID == 0 {
		return domain.Visit{}, domain.ErrInvalidPatient
	}
	if err := s.accessSvc.CanAccess(ctx, access.ResourcePatient, patientID); err != nil {
		switch err {
		case access.ErrNotFound, access.ErrForbidden:
			return domain.Visit{}, domain.ErrInvalidPatient
		default:
			return domain.Visit{}, err
		}
	}

	now := time.Now().UTC()
	visitDate := now
	if req.VisitDate != nil && !req.VisitDate.IsZero() {
		visitDate = req.VisitDate.UTC()
	}

	visit := domain.Visit{
		ID:             s.genID.Generate(),
		ProviderID:     providerID,
		PatientID:      patientID,
		VisitDate:      visitDate,
		ChiefComplaint: strings.TrimSpace(req.ChiefComplaint),
		Diagnosis:      strings.TrimSpace(req.Diagnosis),
		TreatmentPlan:  strings.TrimSpace(req.TreatmentPlan),
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if raw := strings.TrimSpace(req.AppointmentID); raw != "" {
		appointmentID, err := snowflake.ParseString(raw)
		if err != nil || appointmentID == 0 {
			return domain.Visit{}, domain.ErrInvalidAppointment
		}
		var appointment appointmentdomain.Appointment
		err = s.db.WithContext(ctx).
			Where("provider_id = ? AND id = ? AND patient_id = ?", providerID, appointmentID, patientID).
			First(&appointment).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.Visit{}, domain.ErrInvalidAppointment
			}
			return domain.Visit{}, err
		}
		visit.AppointmentID = &appointmentID
	}

	if err := s.db.WithContext(ctx).Create(&visit).Error; err != nil {
		return domain.Visit{}, err
	}

	if s.auditSvc != nil {
		targetID := visit.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "visit.create", "visit", &targetID, map[string]any{
			"patient_id": patientID.String(),
		})
	}

	return visit, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetVisitRequest) (domain.Visit, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Visit{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Visit{}, err
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, req domain.ListVisitRequest) (domain.ListVisitResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListVisitResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.Visit{}).
		Where("provider_id = ?", providerID)
	if raw := strings.TrimSpace(req.PatientID); raw != "" {
		patientID, err := snowflake.ParseString(raw)
		if err != nil || patientID == 0 {
			return domain.ListVisitResponse{}, domain.ErrInvalidPatient
		}
		stmt = stmt.Where("patient_id = ?", patientID)
	}
	if req.From != nil {
		stmt = stmt.Where("visit_date >= ?", req.From.UTC())
	}
	if req.To != nil {
		stmt = stmt.Where("visit_date < ?", req.To.UTC())
	}

	var visits []domain.Visit
	if err := stmt.Order("visit_date desc, id desc").Find(&visits).Error; err != nil {
		return domain.ListVisitResponse{}, err
	}
	return domain.ListVisitResponse{Visits: visits}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateVisitRequest) (domain.Visit, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Visit{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Visit{}, err
	}

	visit, err := s.load(ctx, providerID, id)
	if err != nil {
		return domain.Visit{}, err
	}

	if req.ChiefComplaint != nil {
		visit.ChiefComplaint = strings.TrimSpace(*req.ChiefComplaint)
	}
	if req.Diagnosis != nil {
		visit.Diagnosis = strings.TrimSpace(*req.Diagnosis)
	}
	if req.TreatmentPlan != nil {
		visit.TreatmentPlan = strings.TrimSpace(*req.TreatmentPlan)
	}
	if req.Notes != nil {
		visit.Notes = strings.TrimSpace(*req.Notes)
	}
	visit.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&visit).Error; err != nil {
		return domain.Visit{}, err
	}
	return visit, nil
}

func (s *Service) load(ctx context.Context, providerID, id snowflake.ID) (domain.Visit, error) {
	var visit domain.Visit
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&visit).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Visit{}, domain.ErrNotFound
		}
		return domain.Visit{}, err
	}
	return visit, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
