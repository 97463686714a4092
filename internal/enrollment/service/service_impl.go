package service

import (
	"context"
	"strings"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/access"
	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/enrollment/domain"
	"github.com/bizzy604/HIS-sub000/pkg/db"
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
		log:       p.Log.Named("enrollment.service"),
		genID:     p.GenID,
		accessSvc: p.AccessSvc,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) Enroll(ctx context.Context, req domain.EnrollRequest) (domain.Enrollment, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Enrollment{}, domain.ErrUnauthenticated
	}

	patientID, err := snowflake.ParseString(strings.TrimSpace(req.PatientID))
	if err != nil || patientID == 0 {
		return domain.Enrollment{}, domain.ErrInvalidPatient
	}
	programID, err := snowflake.ParseString(strings.TrimSpace(req.ProgramID))
	if err != nil || programID == 0 {
		return domain.Enrollment{}, domain.ErrInvalidProgram
	}

	if err := s.accessSvc.CanAccess(ctx, access.ResourcePatient, patientID); err != nil {
		switch err {
		case access.ErrNotFound, access.ErrForbidden:
			return domain.Enrollment{}, domain.ErrInvalidPatient
		default:
			return domain.Enrollment{}, err
		}
	}
	if err := s.accessSvc.CanAccess(ctx, access.ResourceProgram, programID); err != nil {
		switch err {
		case access.ErrNotFound, access.ErrForbidden:
			return domain.Enrollment{}, domain.ErrInvalidProgram
		default:
			return domain.Enrollment{}, err
		}
	}

	now := time.Now().UTC()
	enrollment := domain.Enrollment{
		ID:         s.genID.Generate(),
		ProviderID: providerID,
		PatientID:  patientID,
		ProgramID:  programID,
		Status:     domain.EnrollmentStatusActive,
		EnrolledAt: now,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&enrollment).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Enrollment{}, domain.ErrAlreadyEnrolled
		}
		return domain.Enrollment{}, err
	}

	if s.auditSvc != nil {
		targetID := enrollment.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "enrollment.create", "enrollment", &targetID, map[string]any{
			"patient_id": patientID.String(),
			"program_id": programID.String(),
		})
	}

	return enrollment, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEnrollmentRequest) (domain.Enrollment, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Enrollment{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Enrollment{}, err
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, req domain.ListEnrollmentRequest) (domain.ListEnrollmentResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListEnrollmentResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.Enrollment{}).
		Where("provider_id = ?", providerID)
	if raw := strings.TrimSpace(req.PatientID); raw != "" {
		patientID, err := snowflake.ParseString(raw)
		if err != nil || patientID == 0 {
			return domain.ListEnrollmentResponse{}, domain.ErrInvalidPatient
		}
		stmt = stmt.Where("patient_id = ?", patientID)
	}
	if raw := strings.TrimSpace(req.ProgramID); raw != "" {
		programID, err := snowflake.ParseString(raw)
		if err != nil || programID == 0 {
			return domain.ListEnrollmentResponse{}, domain.ErrInvalidProgram
		}
		stmt = stmt.Where("program_id = ?", programID)
	}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var enrollments []domain.Enrollment
	if err := stmt.Order("enrolled_at desc, id desc").Find(&enrollments).Error; err != nil {
		return domain.ListEnrollmentResponse{}, err
	}
	return domain.ListEnrollmentResponse{Enrollments: enrollments}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateEnrollmentStatusRequest) (domain.Enrollment, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Enrollment{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Enrollment{}, err
	}

	next := domain.EnrollmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if next != domain.EnrollmentStatusCompleted && next != domain.EnrollmentStatusWithdrawn {
		return domain.Enrollment{}, domain.ErrInvalidStatus
	}

	enrollment, err := s.load(ctx, providerID, id)
	if err != nil {
		return domain.Enrollment{}, err
	}
	if enrollment.Status != domain.EnrollmentStatusActive {
		return domain.Enrollment{}, domain.ErrNotActive
	}

	now := time.Now().UTC()
	notes := enrollment.Notes
	if trimmed := strings.TrimSpace(req.Notes); trimmed != "" {
		notes = trimmed
	}

	res := s.db.WithContext(ctx).Exec(
		`UPDATE enrollments SET status = ?, ended_at = ?, notes = ?, updated_at = ? WHERE provider_id = ? AND id = ? AND status = 'ACTIVE'`,
		next, now, notes, now, providerID, id,
	)
	if res.Error != nil {
		return domain.Enrollment{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Enrollment{}, domain.ErrNotActive
	}

	if s.auditSvc != nil {
		targetID := id.String()
		_ = s.auditSvc.Record(ctx, providerID, "enrollment.update_status", "enrollment", &targetID, map[string]any{
			"status": string(next),
		})
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) load(ctx context.Context, providerID, id snowflake.ID) (domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&enrollment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Enrollment{}, domain.ErrNotFound
		}
		return domain.Enrollment{}, err
	}
	return enrollment, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
