package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/program/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("program.service"),
		genID:    p.GenID,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProgramRequest) (domain.Program, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Program{}, domain.ErrUnauthenticated
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Program{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	program := domain.Program{
		ID:          s.genID.Generate(),
		ProviderID:  providerID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&program).Error; err != nil {
		return domain.Program{}, err
	}

	if s.auditSvc != nil {
		targetID := program.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "program.create", "program", &targetID, map[string]any{
			"name": program.Name,
		})
	}

	return program, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetProgramRequest) (domain.Program, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Program{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Program{}, err
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, req domain.ListProgramRequest) (domain.ListProgramResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListProgramResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.Program{}).
		Where("provider_id = ?", providerID)
	if q := strings.TrimSpace(req.Query); q != "" {
		stmt = stmt.Where("name LIKE ?", "%"+q+"%")
	}
	if req.Active != nil {
		stmt = stmt.Where("active = ?", *req.Active)
	}

	var programs []domain.Program
	if err := stmt.Order("name asc, id asc").Find(&programs).Error; err != nil {
		return domain.ListProgramResponse{}, err
	}
	return domain.ListProgramResponse{Programs: programs}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProgramRequest) (domain.Program, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Program{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Program{}, err
	}

	program, err := s.load(ctx, providerID, id)
	if err != nil {
		return domain.Program{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Program{}, domain.ErrInvalidName
		}
		program.Name = name
	}
	if req.Description != nil {
		program.Description = strings.TrimSpace(*req.Description)
	}
	if req.Active != nil {
		program.Active = *req.Active
	}
	program.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&program).Error; err != nil {
		return domain.Program{}, err
	}
	return program, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteProgramRequest) error {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		Delete(&domain.Program{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	if s.auditSvc != nil {
		targetID := id.String()
		_ = s.auditSvc.Record(ctx, providerID, "program.delete", "program", &targetID, nil)
	}
	return nil
}

func (s *Service) load(ctx context.Context, providerID, id snowflake.ID) (domain.Program, error) {
	var program domain.Program
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&program).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Program{}, domain.ErrNotFound
		}
		return domain.Program{}, err
	}
	return program, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
