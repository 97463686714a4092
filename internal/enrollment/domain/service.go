package domain

import (
	"context"
	"errors"
)

type EnrollRequest struct {
	PatientID string
	ProgramID string
	Notes     string
}

type GetEnrollmentRequest struct {
	ID string
}

type ListEnrollmentRequest struct {
	PatientID string
	ProgramID string
	Status    string
}

type ListEnrollmentResponse struct {
	Enrollments []Enrollment `json:"enrollments"`
}

type UpdateEnrollmentStatusRequest struct {
	ID     string
	Status string
	Notes  string
}

type Service interface {
	// Enroll adds a patient to a program. Enrolling a patient twice in the
	// same program is rejected.
	Enroll(context.Context, EnrollRequest) (Enrollment, error)
	GetByID(context.Context, GetEnrollmentRequest) (Enrollment, error)
	List(context.Context, ListEnrollmentRequest) (ListEnrollmentResponse, error)
	// UpdateStatus completes or withdraws an active enrollment.
	UpdateStatus(context.Context, UpdateEnrollmentStatusRequest) (Enrollment, error)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidPatient  = errors.New("invalid_patient")
	ErrInvalidProgram  = errors.New("invalid_program")
	ErrInvalidStatus   = errors.New("invalid_enrollment_status")
	ErrAlreadyEnrolled = errors.New("patient_already_enrolled")
	ErrNotActive       = errors.New("enrollment_not_active")
	ErrNotFound        = errors.New("not_found")
)
