package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/access"
	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/billing/domain"
	"github.com/bizzy604/HIS-sub000/internal/config"
	"github.com/bizzy604/HIS-sub000/internal/observability/metrics"
	"github.com/bizzy604/HIS-sub000/internal/sequence"
	"github.com/bizzy604/HIS-sub000/pkg/db"
	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	GenID     *snowflake.Node
	Allocator *sequence.Allocator
	Repo      domain.Repository
	AccessSvc access.Service
	AuditSvc  auditdomain.Service `optional:"true"`
	Metrics   *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	allocator *sequence.Allocator
	repo      domain.Repository
	accessSvc access.Service
	auditSvc  auditdomain.Service
	metrics   *metrics.Metrics
	taxRateBP int64
}

func New(p Params) domain.Service {
	taxRate := p.Cfg.TaxRateBasisPoints
	if taxRate <= 0 {
		taxRate = domain.DefaultTaxRateBasisPoints
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("billing.service"),
		genID:     p.GenID,
		allocator: p.Allocator,
		repo:      p.Repo,
		accessSvc: p.AccessSvc,
		auditSvc:  p.AuditSvc,
		metrics:   p.Metrics,
		taxRateBP: taxRate,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBillRequest) (domain.Bill, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Bill{}, domain.ErrUnauthenticated
	}

	patientID, err := snowflake.ParseString(strings.TrimSpace(req.PatientID))
	if err != nil || patientID == 0 {
		return domain.Bill{}, domain.ErrInvalidPatient
	}
	if len(req.Items) == 0 {
		return domain.Bill{}, domain.ErrEmptyItems
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return domain.Bill{}, domain.ErrInvalidDiscount
	}

	lines := make([]domain.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		description := strings.TrimSpace(item.Description)
		if description == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			return domain.Bill{}, domain.ErrInvalidItem
		}
		lines = append(lines, domain.LineInput{
			Description:    description,
			ItemType:       normalizeItemType(item.ItemType),
			Quantity:       item.Quantity,
			UnitPriceCents: toCents(item.UnitPrice),
		})
	}

	if err := s.accessSvc.CanAccess(ctx, access.ResourcePatient, patientID); err != nil {
		switch err {
		case access.ErrNotFound, access.ErrForbidden:
			return domain.Bill{}, domain.ErrInvalidPatient
		default:
			return domain.Bill{}, err
		}
	}

	totals := domain.ComputeTotals(lines, req.DiscountPercent, s.taxRateBP)

	now := time.Now().UTC()
	bill := domain.Bill{
		ID:              s.genID.Generate(),
		ProviderID:      providerID,
		PatientID:       patientID,
		Status:          domain.BillStatusPending,
		SubtotalCents:   totals.SubtotalCents,
		DiscountPercent: req.DiscountPercent,
		DiscountCents:   totals.DiscountCents,
		TaxCents:        totals.TaxCents,
		TotalCents:      totals.TotalCents,
		Notes:           strings.TrimSpace(req.Notes),
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, line := range lines {
		bill.Items = append(bill.Items, domain.BillItem{
			ID:             s.genID.Generate(),
			ProviderID:     providerID,
			BillID:         bill.ID,
			Description:    line.Description,
			ItemType:       line.ItemType,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			TotalCents:     line.Quantity * line.UnitPriceCents,
			CreatedAt:      now,
		})
	}

	// Bill number allocation and the insert consuming it share one transaction.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.allocator.Mint(ctx, tx, sequence.ScopeBill, sequence.DefaultBillNumberTemplate, now)
		if err != nil {
			return err
		}
		bill.BillNumber = number
		return s.repo.Insert(ctx, tx, &bill)
	})
	if err != nil {
		return domain.Bill{}, err
	}

	if s.metrics != nil {
		s.metrics.DocumentsMinted.WithLabelValues(sequence.ScopeBill).Inc()
	}

	if s.auditSvc != nil {
		targetID := bill.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "bill.create", "bill", &targetID, map[string]any{
			"bill_number": bill.BillNumber,
			"patient_id":  bill.PatientID.String(),
			"total_cents": bill.TotalCents,
		})
	}

	return bill, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBillRequest) (domain.Bill, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Bill{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Bill{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, providerID, id)
	if err != nil {
		return domain.Bill{}, err
	}
	if item == nil {
		return domain.Bill{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBillRequest) (domain.ListBillResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListBillResponse{}, domain.ErrUnauthenticated
	}

	filter := domain.ListBillFilter{}
	if raw := strings.TrimSpace(req.PatientID); raw != "" {
		patientID, err := snowflake.ParseString(raw)
		if err != nil || patientID == 0 {
			return domain.ListBillResponse{}, domain.ErrInvalidPatient
		}
		filter.PatientID = patientID
	}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		filter.Status = domain.BillStatus(status)
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	items, err := s.repo.List(ctx, s.db, providerID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListBillResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(bill *domain.Bill) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        bill.ID.String(),
			CreatedAt: bill.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	bills := make([]domain.Bill, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		bills = append(bills, *item)
	}

	resp := domain.ListBillResponse{Bills: bills}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (domain.Bill, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Bill{}, domain.ErrUnauthenticated
	}

	billID, err := s.parseID(req.BillID)
	if err != nil {
		return domain.Bill{}, err
	}
	if req.Amount <= 0 {
		return domain.Bill{}, domain.ErrInvalidAmount
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		return domain.Bill{}, domain.ErrInvalidMethod
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}
	amountCents := toCents(req.Amount)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindPaymentByKey(ctx, tx, providerID, key)
		if err != nil {
			return err
		}
		if existing != nil {
			// Retried request; the original already counted. A key reused
			// against a different bill, amount or method is a client bug,
			// not a replay.
			return matchesRecordedPayment(existing, billID, amountCents, method)
		}

		payment := domain.BillPayment{
			ID:             s.genID.Generate(),
			ProviderID:     providerID,
			BillID:         billID,
			AmountCents:    amountCents,
			Method:         method,
			IdempotencyKey: key,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			if db.IsDuplicateKeyErr(err) {
				// Lost a race with a concurrent request holding the same key.
				recorded, findErr := s.repo.FindPaymentByKey(ctx, tx, providerID, key)
				if findErr != nil {
					return findErr
				}
				if recorded == nil {
					return err
				}
				return matchesRecordedPayment(recorded, billID, amountCents, method)
			}
			return err
		}

		applied, err := s.repo.ApplyPayment(ctx, tx, providerID, billID, amountCents, payment.CreatedAt)
		if err != nil {
			return err
		}
		if !applied {
			return s.classifyRejectedPayment(ctx, tx, providerID, billID, amountCents)
		}
		return nil
	})
	if err != nil {
		return domain.Bill{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, providerID, billID)
	if err != nil {
		return domain.Bill{}, err
	}
	if updated == nil {
		return domain.Bill{}, domain.ErrNotFound
	}

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.Inc()
	}

	if s.auditSvc != nil {
		targetID := updated.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "bill.payment", "bill", &targetID, map[string]any{
			"amount_cents": amountCents,
			"method":       method,
			"status":       string(updated.Status),
		})
	}

	return *updated, nil
}

func (s *Service) Cancel(ctx context.Context, req domain.CancelBillRequest) (domain.Bill, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.Bill{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Bill{}, err
	}

	cancelled, err := s.repo.Cancel(ctx, s.db, providerID, id, time.Now().UTC())
	if err != nil {
		return domain.Bill{}, err
	}
	if !cancelled {
		existing, err := s.repo.FindByID(ctx, s.db, providerID, id)
		if err != nil {
			return domain.Bill{}, err
		}
		if existing == nil {
			return domain.Bill{}, domain.ErrNotFound
		}
		return domain.Bill{}, domain.ErrBillClosed
	}

	updated, err := s.repo.FindByID(ctx, s.db, providerID, id)
	if err != nil {
		return domain.Bill{}, err
	}
	if updated == nil {
		return domain.Bill{}, domain.ErrNotFound
	}
	return *updated, nil
}

// classifyRejectedPayment explains a refused ApplyPayment so the caller gets
// a precise error instead of a blanket 500.
func (s *Service) classifyRejectedPayment(ctx context.Context, tx *gorm.DB, providerID, billID snowflake.ID, amountCents int64) error {
	bill, err := s.repo.FindByID(ctx, tx, providerID, billID)
	if err != nil {
		return err
	}
	if bill == nil {
		return domain.ErrNotFound
	}
	switch bill.Status {
	case domain.BillStatusCancelled, domain.BillStatusPaid:
		return domain.ErrBillClosed
	}
	if bill.PaidCents+amountCents > bill.TotalCents {
		return domain.ErrOverpayment
	}
	return domain.ErrBillClosed
}

// matchesRecordedPayment treats a replay as idempotent only when the request
// targets the same bill with the same amount and method as the recorded
// payment.
func matchesRecordedPayment(recorded *domain.BillPayment, billID snowflake.ID, amountCents int64, method string) error {
	if recorded.BillID != billID || recorded.AmountCents != amountCents || recorded.Method != method {
		return domain.ErrIdempotencyConflict
	}
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeItemType(raw string) domain.ItemType {
	switch domain.ItemType(strings.ToUpper(strings.TrimSpace(raw))) {
	case domain.ItemTypeConsultation:
		return domain.ItemTypeConsultation
	case domain.ItemTypeProcedure:
		return domain.ItemTypeProcedure
	case domain.ItemTypeMedication:
		return domain.ItemTypeMedication
	case domain.ItemTypeLabTest:
		return domain.ItemTypeLabTest
	default:
		return domain.ItemTypeOther
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
