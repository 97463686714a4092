package domain

import (
	"context"
	"errors"

	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
)

type BillItemInput struct {
	Description string
	ItemType    string
	Quantity    int64
	UnitPrice   float64
}

type CreateBillRequest struct {
	PatientID       string
	Items           []BillItemInput
	DiscountPercent float64
	Notes           string
}

type GetBillRequest struct {
	ID string
}

type ListBillRequest struct {
	PageToken string
	PageSize  int32
	PatientID string
	Status    string
}

type ListBillResponse struct {
	pagination.PageInfo
	Bills []Bill `json:"bills"`
}

type RecordPaymentRequest struct {
	BillID         string
	Amount         float64
	Method         string
	IdempotencyKey string
}

type CancelBillRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateBillRequest) (Bill, error)
	GetByID(context.Context, GetBillRequest) (Bill, error)
	List(context.Context, ListBillRequest) (ListBillResponse, error)
	RecordPayment(context.Context, RecordPaymentRequest) (Bill, error)
	Cancel(context.Context, CancelBillRequest) (Bill, error)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidPatient  = errors.New("invalid_patient")
	ErrEmptyItems      = errors.New("invalid_items")
	ErrInvalidItem     = errors.New("invalid_item")
	ErrInvalidDiscount = errors.New("invalid_discount")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidMethod   = errors.New("invalid_method")
	ErrNotFound        = errors.New("not_found")
	ErrBillClosed      = errors.New("bill_closed")
	ErrOverpayment     = errors.New("overpayment")
	// ErrIdempotencyConflict marks an idempotency key replayed with a
	// different bill, amount or method than the recorded payment.
	ErrIdempotencyConflict = errors.New("idempotency_conflict")
)
