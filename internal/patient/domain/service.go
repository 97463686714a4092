package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
)

type CreatePatientRequest struct {
	Name        string
	DateOfBirth *time.Time
	Gender      string
	Phone       string
	Email       string
	Address     string
	BloodType   string
}

type UpdatePatientRequest struct {
	ID          string
	Name        *string
	DateOfBirth *time.Time
	Gender      *string
	Phone       *string
	Email       *string
	Address     *string
	BloodType   *string
}

type GetPatientRequest struct {
	ID string
}

type DeletePatientRequest struct {
	ID string
}

type ListPatientRequest struct {
	PageToken string
	PageSize  int32
	Query     string
	Gender    string
}

type ListPatientResponse struct {
	pagination.PageInfo
	Patients []Patient `json:"patients"`
}

type Service interface {
	Create(context.Context, CreatePatientRequest) (Patient, error)
	GetByID(context.Context, GetPatientRequest) (Patient, error)
	List(context.Context, ListPatientRequest) (ListPatientResponse, error)
	Update(context.Context, UpdatePatientRequest) (Patient, error)
	Delete(context.Context, DeletePatientRequest) error
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
