package domain

import (
	"context"
	"errors"
)

type CreateLabOrderRequest struct {
	PatientID string
	VisitID   string
	TestName  string
	TestCode  string
	Priority  string
	Notes     string
}

type GetLabOrderRequest struct {
	ID string
}

type ListLabOrderRequest struct {
	PatientID string
	Status    string
}

type ListLabOrderResponse struct {
	LabOrders []LabOrder `json:"lab_orders"`
}

type TransitionLabOrderRequest struct {
	ID     string
	Status string
}

type RecordResultsRequest struct {
	ID      string
	Results map[string]any
	Notes   string
}

type Service interface {
	Create(context.Context, CreateLabOrderRequest) (LabOrder, error)
	GetByID(context.Context, GetLabOrderRequest) (LabOrder, error)
	List(context.Context, ListLabOrderRequest) (ListLabOrderResponse, error)
	// Transition moves an order to IN_PROGRESS or CANCELLED. Completion goes
	// through RecordResults so a completed order always carries results.
	Transition(context.Context, TransitionLabOrderRequest) (LabOrder, error)
	RecordResults(context.Context, RecordResultsRequest) (LabOrder, error)
}

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidPatient    = errors.New("invalid_patient")
	ErrInvalidVisit      = errors.New("invalid_visit")
	ErrInvalidTest       = errors.New("invalid_test")
	ErrInvalidStatus     = errors.New("invalid_lab_order_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrEmptyResults      = errors.New("empty_results")
	ErrNotFound          = errors.New("not_found")
)
