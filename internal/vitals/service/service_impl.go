package service

import (
	"context"
	"strings"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/access"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/vitals/domain"
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
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	accessSvc access.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("vitals.service"),
		genID:     p.GenID,
		accessSvc: p.AccessSvc,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordVitalsRequest) (domain.VitalSign, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.VitalSign{}, domain.ErrUnauthenticated
	}

	patientID, err := snowflake.ParseString(strings.TrimSpace(req.PatientID))
	if err != nil || patientID == 0 {
		return domain.VitalSign{}, domain.ErrInvalidPatient
	}
	if err := s.accessSvc.CanAccess(ctx, access.ResourcePatient, patientID); err != nil {
		switch err {
		case access.ErrNotFound, access.ErrForbidden:
			return domain.VitalSign{}, domain.ErrInvalidPatient
		default:
			return domain.VitalSign{}, err
		}
	}

	if req.TemperatureC == nil && req.PulseBPM == nil && req.RespiratoryRate == nil &&
		req.SystolicBP == nil && req.DiastolicBP == nil && req.OxygenSaturation == nil &&
		req.WeightKG == nil && req.HeightCM == nil {
		return domain.VitalSign{}, domain.ErrEmptyReading
	}
	if err := validateRanges(req); err != nil {
		return domain.VitalSign{}, err
	}

	now := time.Now().UTC()
	recordedAt := now
	if req.RecordedAt != nil && !req.RecordedAt.IsZero() {
		recordedAt = req.RecordedAt.UTC()
	}

	reading := domain.VitalSign{
		ID:               s.genID.Generate(),
		ProviderID:       providerID,
		PatientID:        patientID,
		TemperatureC:     req.TemperatureC,
		PulseBPM:         req.PulseBPM,
		RespiratoryRate:  req.RespiratoryRate,
		SystolicBP:       req.SystolicBP,
		DiastolicBP:      req.DiastolicBP,
		OxygenSaturation: req.OxygenSaturation,
		WeightKG:         req.WeightKG,
		HeightCM:         req.HeightCM,
		RecordedAt:       recordedAt,
		CreatedAt:        now,
	}

	if raw := strings.TrimSpace(req.VisitID); raw != "" {
		visitID, err := snowflake.ParseString(raw)
		if err != nil || visitID == 0 {
			return domain.VitalSign{}, domain.ErrInvalidVisit
		}
		if err := s.accessSvc.CanAccess(ctx, access.ResourceVisit, visitID); err != nil {
			switch err {
			case access.ErrNotFound, access.ErrForbidden:
				return domain.VitalSign{}, domain.ErrInvalidVisit
			default:
				return domain.VitalSign{}, err
			}
		}
		reading.VisitID = &visitID
	}

	if err := s.db.WithContext(ctx).Create(&reading).Error; err != nil {
		return domain.VitalSign{}, err
	}
	return reading, nil
}

func (s *Service) List(ctx context.Context, req domain.ListVitalsRequest) (domain.ListVitalsResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListVitalsResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.VitalSign{}).
		Where("provider_id = ?", providerID)
	if raw := strings.TrimSpace(req.PatientID); raw != "" {
		patientID, err := snowflake.ParseString(raw)
		if err != nil || patientID == 0 {
			return domain.ListVitalsResponse{}, domain.ErrInvalidPatient
		}
		stmt = stmt.Where("patient_id = ?", patientID)
	}
	if raw := strings.TrimSpace(req.VisitID); raw != "" {
		visitID, err := snowflake.ParseString(raw)
		if err != nil || visitID == 0 {
			return domain.ListVitalsResponse{}, domain.ErrInvalidVisit
		}
		stmt = stmt.Where("visit_id = ?", visitID)
	}
	if req.From != nil {
		stmt = stmt.Where("recorded_at >= ?", req.From.UTC())
	}
	if req.To != nil {
		stmt = stmt.Where("recorded_at < ?", req.To.UTC())
	}

	var vitals []domain.VitalSign
	if err := stmt.Order("recorded_at desc, id desc").Find(&vitals).Error; err != nil {
		return domain.ListVitalsResponse{}, err
	}
	return domain.ListVitalsResponse{Vitals: vitals}, nil
}

// validateRanges rejects readings outside plausible human limits.
func validateRanges(req domain.RecordVitalsRequest) error {
	if req.TemperatureC != nil && (*req.TemperatureC < 25 || *req.TemperatureC > 45) {
		return domain.ErrInvalidReading
	}
	if req.PulseBPM != nil && (*req.PulseBPM <= 0 || *req.PulseBPM > 300) {
		return domain.ErrInvalidReading
	}
	if req.RespiratoryRate != nil && (*req.RespiratoryRate <= 0 || *req.RespiratoryRate > 120) {
		return domain.ErrInvalidReading
	}
	if req.SystolicBP != nil && (*req.SystolicBP <= 0 || *req.SystolicBP > 300) {
		return domain.ErrInvalidReading
	}
	if req.DiastolicBP != nil && (*req.DiastolicBP <= 0 || *req.DiastolicBP > 200) {
		return domain.ErrInvalidReading
	}
	if req.OxygenSaturation != nil && (*req.OxygenSaturation <= 0 || *req.OxygenSaturation > 100) {
		return domain.ErrInvalidReading
	}
	if req.WeightKG != nil && (*req.WeightKG <= 0 || *req.WeightKG > 700) {
		return domain.ErrInvalidReading
	}
	if req.HeightCM != nil && (*req.HeightCM <= 0 || *req.HeightCM > 300) {
		return domain.ErrInvalidReading
	}
	return nil
}
