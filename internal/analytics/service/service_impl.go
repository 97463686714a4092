package service

import (
	"context"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/analytics/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/sequence"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("analytics.service"),
	}
}

func (s *Service) Dashboard(ctx context.Context, now time.Time) (domain.DashboardSummary, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.DashboardSummary{}, domain.ErrUnauthenticated
	}

	day := sequence.DayOf(now)
	var summary domain.DashboardSummary

	counts := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&summary.TotalPatients,
			`SELECT COUNT(*) FROM patients WHERE provider_id = ?`,
			[]any{providerID}},
		{&summary.NewPatientsToday,
			`SELECT COUNT(*) FROM patients WHERE provider_id = ? AND created_at >= ? AND created_at < ?`,
			[]any{providerID, day.Start, day.End}},
		{&summary.AppointmentsToday,
			`SELECT COUNT(*) FROM appointments WHERE provider_id = ? AND scheduled_at >= ? AND scheduled_at < ?`,
			[]any{providerID, day.Start, day.End}},
		{&summary.OpenAppointmentsToday,
			`SELECT COUNT(*) FROM appointments WHERE provider_id = ? AND scheduled_at >= ? AND scheduled_at < ? AND status IN ('SCHEDULED','WAITING','IN_PROGRESS')`,
			[]any{providerID, day.Start, day.End}},
		{&summary.ActivePrescriptions,
			`SELECT COUNT(*) FROM prescriptions WHERE provider_id = ? AND status = 'ACTIVE'`,
			[]any{providerID}},
		{&summary.PendingLabOrders,
			`SELECT COUNT(*) FROM lab_orders WHERE provider_id = ? AND status IN ('ORDERED','IN_PROGRESS')`,
			[]any{providerID}},
		// The medicine catalogue is clinic-wide, not provider-scoped.
		{&summary.LowStockMedicines,
			`SELECT COUNT(*) FROM medicines WHERE stock_quantity <= reorder_level`,
			nil},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Raw(c.query, c.args...).Scan(c.dest).Error; err != nil {
			return domain.DashboardSummary{}, err
		}
	}

	// Revenue counts money received today; outstanding is what remains open
	// across all bills regardless of age.
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM bill_payments WHERE provider_id = ? AND created_at >= ? AND created_at < ?`,
		providerID, day.Start, day.End,
	).Scan(&summary.RevenueTodayCents).Error
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	err = s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total_cents - paid_cents), 0) FROM bills WHERE provider_id = ? AND status IN ('PENDING','PARTIAL')`,
		providerID,
	).Scan(&summary.OutstandingCents).Error
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	return summary, nil
}

func (s *Service) RevenueSeries(ctx context.Context, req domain.RevenueSeriesRequest) ([]domain.RevenuePoint, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if req.From.IsZero() || req.To.IsZero() || !req.From.Before(req.To) {
		return nil, domain.ErrInvalidRange
	}

	from := sequence.DayOf(req.From).Start
	to := sequence.DayOf(req.To).End

	type row struct {
		Day          string
		RevenueCents int64
		Payments     int64
	}
	dayExpr := `strftime('%Y-%m-%d', created_at)`
	switch s.db.Dialector.Name() {
	case "postgres":
		dayExpr = `to_char(created_at, 'YYYY-MM-DD')`
	case "mysql":
		dayExpr = `DATE_FORMAT(created_at, '%Y-%m-%d')`
	}

	var rows []row
	err := s.db.WithContext(ctx).Raw(
		`SELECT `+dayExpr+` AS day,
		        COALESCE(SUM(amount_cents), 0) AS revenue_cents,
		        COUNT(*) AS payments
		 FROM bill_payments
		 WHERE provider_id = ? AND created_at >= ? AND created_at < ?
		 GROUP BY day
		 ORDER BY day ASC`,
		providerID, from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	points := make([]domain.RevenuePoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.RevenuePoint{
			Day:          r.Day,
			RevenueCents: r.RevenueCents,
			Payments:     r.Payments,
		})
	}
	return points, nil
}
