package service

import (
	"context"
	"strings"

	"github.com/bizzy604/HIS-sub000/internal/provider/domain"
	"github.com/bizzy604/HIS-sub000/pkg/db/option"
	"github.com/bizzy604/HIS-sub000/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo repository.Repository[domain.Provider]
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("provider.service"),
		repo: repository.ProvideStore[domain.Provider](p.DB),
	}
}

func (s *Service) ResolveToken(ctx context.Context, token string) (domain.Provider, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Provider{}, domain.ErrInvalidToken
	}

	item, err := s.repo.FindOne(ctx, &domain.Provider{APIToken: token, Active: true})
	if err != nil {
		return domain.Provider{}, err
	}
	if item == nil {
		return domain.Provider{}, domain.ErrInvalidToken
	}

	return *item, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetProviderRequest) (domain.Provider, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Provider{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindOne(ctx, &domain.Provider{ID: id})
	if err != nil {
		return domain.Provider{}, err
	}
	if item == nil {
		return domain.Provider{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProviderRequest) (domain.ListProviderResponse, error) {
	filter := &domain.Provider{Active: true}
	if role := strings.ToLower(strings.TrimSpace(req.Role)); role != "" {
		filter.Role = role
	}

	items, err := s.repo.Find(ctx, filter, option.WithSortBy(option.QuerySortBy{Field: "name"}))
	if err != nil {
		return domain.ListProviderResponse{}, err
	}

	providers := make([]domain.Provider, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		providers = append(providers, *item)
	}

	return domain.ListProviderResponse{Providers: providers}, nil
}
