package domain

import (
	"context"
	"errors"
)

type GetProviderRequest struct {
	ID string
}

type ListProviderRequest struct {
	Role string
}

type ListProviderResponse struct {
	Providers []Provider `json:"providers"`
}

type Service interface {
	ResolveToken(ctx context.Context, token string) (Provider, error)
	GetByID(ctx context.Context, req GetProviderRequest) (Provider, error)
	List(ctx context.Context, req ListProviderRequest) (ListProviderResponse, error)
}

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
