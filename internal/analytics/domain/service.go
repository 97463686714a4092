package domain

import (
	"context"
	"errors"
	"time"
)

// DashboardSummary is the aggregate snapshot for a provider's dashboard.
type DashboardSummary struct {
	TotalPatients         int64 `json:"total_patients"`
	NewPatientsToday      int64 `json:"new_patients_today"`
	AppointmentsToday     int64 `json:"appointments_today"`
	OpenAppointmentsToday int64 `json:"open_appointments_today"`
	ActivePrescriptions   int64 `json:"active_prescriptions"`
	PendingLabOrders      int64 `json:"pending_lab_orders"`
	RevenueTodayCents     int64 `json:"revenue_today_cents"`
	OutstandingCents      int64 `json:"outstanding_cents"`
	LowStockMedicines     int64 `json:"low_stock_medicines"`
}

// RevenuePoint is one day of collected payments.
type RevenuePoint struct {
	Day          string `json:"day"`
	RevenueCents int64  `json:"revenue_cents"`
	Payments     int64  `json:"payments"`
}

type RevenueSeriesRequest struct {
	From time.Time
	To   time.Time
}

type Service interface {
	// Dashboard computes the summary for the day containing the supplied
	// instant.
	Dashboard(ctx context.Context, now time.Time) (DashboardSummary, error)
	// RevenueSeries returns per-day collected payment totals over [From, To).
	RevenueSeries(context.Context, RevenueSeriesRequest) ([]RevenuePoint, error)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidRange    = errors.New("invalid_date_range")
)
