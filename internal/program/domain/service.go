package domain

import (
	"context"
	"errors"
)

type CreateProgramRequest struct {
	Name        string
	Description string
}

type GetProgramRequest struct {
	ID string
}

type ListProgramRequest struct {
	Query  string
	Active *bool
}

type ListProgramResponse struct {
	Programs []Program `json:"programs"`
}

type UpdateProgramRequest struct {
	ID          string
	Name        *string
	Description *string
	Active      *bool
}

type DeleteProgramRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateProgramRequest) (Program, error)
	GetByID(context.Context, GetProgramRequest) (Program, error)
	List(context.Context, ListProgramRequest) (ListProgramResponse, error)
	Update(context.Context, UpdateProgramRequest) (Program, error)
	Delete(context.Context, DeleteProgramRequest) error
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrNotFound        = errors.New("not_found")
)
