package service

import (
	"context"
	"strings"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/access"
	"github.com/bizzy604/HIS-sub000/internal/appointment/domain"
	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/sequence"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDurationMinutes = 30

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
		log:       p.Log.Named("appointment.service"),
		genID:     p.GenID,
		accessSvc: p.AccessSvc,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAppointmentRequest) (domain.Appointment, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Appointment{}, domain.ErrUnauthenticated
	}

	patientID, err := snowflake.ParseString(strings.TrimSpace(req.PatientID))
	if err != nil || patientID == 0 {
		return domain.Appointment{}, domain.ErrInvalidPatient
	}
	if err := s.accessSvc.CanAccess(ctx, access.ResourcePatient, patientID); err != nil {
		switch err {
		case access.ErrNotFound, access.ErrForbidden:
			return domain.Appointment{}, domain.ErrInvalidPatient
		default:
			return domain.Appointment{}, err
		}
	}
	if req.ScheduledAt.IsZero() {
		return domain.Appointment{}, domain.ErrInvalidSchedule
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = defaultDurationMinutes
	}

	now := time.Now().UTC()
	appointment := domain.Appointment{
		ID:              s.genID.Generate(),
		ProviderID:      providerID,
		PatientID:       patientID,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Reason:          strings.TrimSpace(req.Reason),
		Status:          domain.AppointmentStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.WithContext(ctx).Create(&appointment).Error; err != nil {
		return domain.Appointment{}, err
	}

	if s.auditSvc != nil {
		targetID := appointment.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "appointment.create", "appointment", &targetID, map[string]any{
			"patient_id":   patientID.String(),
			"scheduled_at": appointment.ScheduledAt,
		})
	}

	return appointment, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetAppointmentRequest) (domain.Appointment, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Appointment{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, req domain.ListAppointmentRequest) (domain.ListAppointmentResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListAppointmentResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Where("provider_id = ?", providerID)
	if raw := strings.TrimSpace(req.PatientID); raw != "" {
		patientID, err := snowflake.ParseString(raw)
		if err != nil || patientID == 0 {
			return domain.ListAppointmentResponse{}, domain.ErrInvalidPatient
		}
		stmt = stmt.Where("patient_id = ?", patientID)
	}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if req.From != nil {
		stmt = stmt.Where("scheduled_at >= ?", req.From.UTC())
	}
	if req.To != nil {
		stmt = stmt.Where("scheduled_at < ?", req.To.UTC())
	}

	var appointments []domain.Appointment
	if err := stmt.Order("scheduled_at asc, id asc").Find(&appointments).Error; err != nil {
		return domain.ListAppointmentResponse{}, err
	}
	return domain.ListAppointmentResponse{Appointments: appointments}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAppointmentRequest) (domain.Appointment, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Appointment{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	appointment, err := s.load(ctx, providerID, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	// Rescheduling only makes sense before the encounter starts.
	if appointment.Status != domain.AppointmentStatusScheduled && appointment.Status != domain.AppointmentStatusWaiting {
		return domain.Appointment{}, domain.ErrInvalidTransition
	}

	if req.ScheduledAt != nil {
		if req.ScheduledAt.IsZero() {
			return domain.Appointment{}, domain.ErrInvalidSchedule
		}
		appointment.ScheduledAt = req.ScheduledAt.UTC()
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return domain.Appointment{}, domain.ErrInvalidSchedule
		}
		appointment.DurationMinutes = *req.DurationMinutes
	}
	if req.Reason != nil {
		appointment.Reason = strings.TrimSpace(*req.Reason)
	}
	if req.Notes != nil {
		appointment.Notes = strings.TrimSpace(*req.Notes)
	}
	appointment.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&appointment).Error; err != nil {
		return domain.Appointment{}, err
	}
	return appointment, nil
}

func (s *Service) Transition(ctx context.Context, req domain.TransitionAppointmentRequest) (domain.Appointment, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Appointment{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	next := domain.AppointmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	switch next {
	case domain.AppointmentStatusScheduled, domain.AppointmentStatusWaiting,
		domain.AppointmentStatusInProgress, domain.AppointmentStatusCompleted,
		domain.AppointmentStatusCancelled, domain.AppointmentStatusNoShow:
	default:
		return domain.Appointment{}, domain.ErrInvalidStatus
	}

	appointment, err := s.load(ctx, providerID, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !domain.CanTransition(appointment.Status, next) {
		return domain.Appointment{}, domain.ErrInvalidTransition
	}

	notes := appointment.Notes
	if trimmed := strings.TrimSpace(req.Notes); trimmed != "" {
		notes = trimmed
	}

	// Guard on the current status so two concurrent transitions cannot both win.
	res := s.db.WithContext(ctx).Exec(
		`UPDATE appointments SET status = ?, notes = ?, updated_at = ? WHERE provider_id = ? AND id = ? AND status = ?`,
		next, notes, time.Now().UTC(), providerID, id, appointment.Status,
	)
	if res.Error != nil {
		return domain.Appointment{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Appointment{}, domain.ErrInvalidTransition
	}

	if s.auditSvc != nil {
		targetID := id.String()
		_ = s.auditSvc.Record(ctx, providerID, "appointment.transition", "appointment", &targetID, map[string]any{
			"from": string(appointment.Status),
			"to":   string(next),
		})
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) TodayQueue(ctx context.Context, now time.Time) ([]domain.Appointment, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	day := sequence.DayOf(now)
	open := []domain.AppointmentStatus{
		domain.AppointmentStatusScheduled,
		domain.AppointmentStatusWaiting,
		domain.AppointmentStatusInProgress,
	}

	var appointments []domain.Appointment
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND scheduled_at >= ? AND scheduled_at < ? AND status IN ?",
			providerID, day.Start, day.End, open).
		Order("scheduled_at asc, id asc").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *Service) load(ctx context.Context, providerID, id snowflake.ID) (domain.Appointment, error) {
	var appointment domain.Appointment
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&appointment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Appointment{}, domain.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appointment, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
