package domain

import (
	"context"
	"errors"
	"time"
)

type CreateAppointmentRequest struct {
	PatientID       string
	ScheduledAt     time.Time
	DurationMinutes int64
	Reason          string
}

type GetAppointmentRequest struct {
	ID string
}

type ListAppointmentRequest struct {
	PatientID string
	Status    string
	From      *time.Time
	To        *time.Time
}

type ListAppointmentResponse struct {
	Appointments []Appointment `json:"appointments"`
}

type UpdateAppointmentRequest struct {
	ID              string
	ScheduledAt     *time.Time
	DurationMinutes *int64
	Reason          *string
	Notes           *string
}

type TransitionAppointmentRequest struct {
	ID     string
	Status string
	Notes  string
}

type Service interface {
	Create(context.Context, CreateAppointmentRequest) (Appointment, error)
	GetByID(context.Context, GetAppointmentRequest) (Appointment, error)
	List(context.Context, ListAppointmentRequest) (ListAppointmentResponse, error)
	Update(context.Context, UpdateAppointmentRequest) (Appointment, error)
	// Transition moves the appointment along the allowed status graph; any
	// other move is rejected.
	Transition(context.Context, TransitionAppointmentRequest) (Appointment, error)
	// TodayQueue lists the provider's still-open appointments for the day of
	// the supplied instant, ordered by scheduled time.
	TodayQueue(ctx context.Context, now time.Time) ([]Appointment, error)
}

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidPatient    = errors.New("invalid_patient")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidSchedule   = errors.New("invalid_schedule_time")
	ErrInvalidStatus     = errors.New("invalid_appointment_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNotFound          = errors.New("not_found")
)
