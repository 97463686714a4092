package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/observability/metrics"
	"github.com/bizzy604/HIS-sub000/internal/patient/domain"
	"github.com/bizzy604/HIS-sub000/internal/sequence"
	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Allocator *sequence.Allocator
	Repo      domain.Repository
	AuditSvc  auditdomain.Service `optional:"true"`
	Metrics   *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	allocator *sequence.Allocator
	repo      domain.Repository
	auditSvc  auditdomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("patient.service"),
		genID:     p.GenID,
		allocator: p.Allocator,
		repo:      p.Repo,
		auditSvc:  p.AuditSvc,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePatientRequest) (domain.Patient, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Patient{}, domain.ErrUnauthenticated
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Patient{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	patient := domain.Patient{
		ID:          s.genID.Generate(),
		ProviderID:  providerID,
		Name:        name,
		DateOfBirth: req.DateOfBirth,
		Gender:      strings.TrimSpace(req.Gender),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		Address:     strings.TrimSpace(req.Address),
		BloodType:   strings.TrimSpace(req.BloodType),
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// MRN allocation and the insert consuming it commit or roll back together.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mrn, err := s.allocator.Mint(ctx, tx, sequence.ScopeMRN, sequence.DefaultMRNTemplate, now)
		if err != nil {
			return err
		}
		patient.MRN = mrn
		return s.repo.Insert(ctx, tx, &patient)
	})
	if err != nil {
		return domain.Patient{}, err
	}

	if s.metrics != nil {
		s.metrics.DocumentsMinted.WithLabelValues(sequence.ScopeMRN).Inc()
	}

	if s.auditSvc != nil {
		targetID := patient.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "patient.create", "patient", &targetID, map[string]any{
			"mrn":  patient.MRN,
			"name": patient.Name,
		})
	}

	return patient, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPatientRequest) (domain.Patient, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Patient{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Patient{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, providerID, id)
	if err != nil {
		return domain.Patient{}, err
	}
	if item == nil {
		return domain.Patient{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPatientRequest) (domain.ListPatientResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListPatientResponse{}, domain.ErrUnauthenticated
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	items, err := s.repo.List(ctx, s.db, providerID, domain.ListPatientFilter{
		Query:  strings.TrimSpace(req.Query),
		Gender: strings.TrimSpace(req.Gender),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListPatientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(patient *domain.Patient) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        patient.ID.String(),
			CreatedAt: patient.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	patients := make([]domain.Patient, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		patients = append(patients, *item)
	}

	resp := domain.ListPatientResponse{Patients: patients}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePatientRequest) (domain.Patient, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Patient{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Patient{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, providerID, id)
	if err != nil {
		return domain.Patient{}, err
	}
	if existing == nil {
		return domain.Patient{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Patient{}, domain.ErrInvalidName
		}
		existing.Name = name
	}
	if req.DateOfBirth != nil {
		existing.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		existing.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Phone != nil {
		existing.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		existing.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		existing.Address = strings.TrimSpace(*req.Address)
	}
	if req.BloodType != nil {
		existing.BloodType = strings.TrimSpace(*req.BloodType)
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Patient{}, err
	}

	return *existing, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeletePatientRequest) error {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, s.db, providerID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, providerID, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
