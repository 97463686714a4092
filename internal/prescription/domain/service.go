package domain

import (
	"context"
	"errors"
)

type PrescriptionItemInput struct {
	MedicineID   string
	Dosage       string
	Frequency    string
	DurationDays int64
	Quantity     int64
	Instructions string
}

type CreatePrescriptionRequest struct {
	PatientID string
	VisitID   string
	Notes     string
	Items     []PrescriptionItemInput
}

type GetPrescriptionRequest struct {
	ID string
}

type ListPrescriptionRequest struct {
	PatientID string
	Status    string
}

type ListPrescriptionResponse struct {
	Prescriptions []Prescription `json:"prescriptions"`
}

type DispensePrescriptionRequest struct {
	ID string
}

type CancelPrescriptionRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreatePrescriptionRequest) (Prescription, error)
	GetByID(context.Context, GetPrescriptionRequest) (Prescription, error)
	List(context.Context, ListPrescriptionRequest) (ListPrescriptionResponse, error)
	// Dispense marks the prescription dispensed and decrements medicine stock
	// for every item inside one transaction.
	Dispense(context.Context, DispensePrescriptionRequest) (Prescription, error)
	Cancel(context.Context, CancelPrescriptionRequest) (Prescription, error)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidPatient  = errors.New("invalid_patient")
	ErrInvalidID       = errors.New("invalid_id")
	ErrEmptyItems      = errors.New("invalid_items")
	ErrInvalidItem     = errors.New("invalid_item")
	ErrNotFound        = errors.New("not_found")
	ErrNotActive       = errors.New("prescription_not_active")
)
