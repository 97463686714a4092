package domain

import (
	"context"
	"errors"
	"time"
)

type RecordVitalsRequest struct {
	PatientID        string
	VisitID          string
	TemperatureC     *float64
	PulseBPM         *int64
	RespiratoryRate  *int64
	SystolicBP       *int64
	DiastolicBP      *int64
	OxygenSaturation *float64
	WeightKG         *float64
	HeightCM         *float64
	RecordedAt       *time.Time
}

type ListVitalsRequest struct {
	PatientID string
	VisitID   string
	From      *time.Time
	To        *time.Time
}

type ListVitalsResponse struct {
	Vitals []VitalSign `json:"vitals"`
}

type Service interface {
	// Record stores a reading. At least one measurement must be present and
	// every supplied measurement must fall inside a plausible range.
	Record(context.Context, RecordVitalsRequest) (VitalSign, error)
	List(context.Context, ListVitalsRequest) (ListVitalsResponse, error)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidPatient  = errors.New("invalid_patient")
	ErrInvalidVisit    = errors.New("invalid_visit")
	ErrEmptyReading    = errors.New("empty_reading")
	ErrInvalidReading  = errors.New("invalid_reading")
)
