package domain

import (
	"context"
	"errors"
	"time"
)

type CreateVisitRequest struct {
	PatientID      string
	AppointmentID  string
	VisitDate      *time.Time
	ChiefComplaint string
	Diagnosis      string
	TreatmentPlan  string
	Notes          string
}

type GetVisitRequest struct {
	ID string
}

type ListVisitRequest struct {
	PatientID string
	From      *time.Time
	To        *time.Time
}

type ListVisitResponse struct {
	Visits []Visit `json:"visits"`
}

type UpdateVisitRequest struct {
	ID             string
	ChiefComplaint *string
	Diagnosis      *string
	TreatmentPlan  *string
	Notes          *string
}

type Service interface {
	// Create records a clinical encounter. When an appointment id is supplied
	// the appointment must belong to the same patient.
	Create(context.Context, CreateVisitRequest) (Visit, error)
	GetByID(context.Context, GetVisitRequest) (Visit, error)
	List(context.Context, ListVisitRequest) (ListVisitResponse, error)
	Update(context.Context, UpdateVisitRequest) (Visit, error)
}

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidPatient     = errors.New("invalid_patient")
	ErrInvalidAppointment = errors.New("invalid_appointment")
	ErrNotFound           = errors.New("not_found")
)
