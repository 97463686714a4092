package service

import (
	"context"
	"strings"
	"time"

	"github.com/bizzy604/HIS-sub000/internal/access"
	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/laborder/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	AccessSvc access.Service
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	accessSvc access.Service
	auditSvc  auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("laborder.service"),
		genID:     p.GenID,
		accessSvc: p.AccessSvc,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLabOrderRequest) (domain.LabOrder, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.LabOrder{}, domain.ErrUnauthenticated
	}

	patientID, err := snowflake.ParseString(strings.TrimSpace(req.PatientID))
	if err != nil || patientID == 0 {
		return domain.LabOrder{}, domain.ErrInvalidPatient
	}
	if err := s.accessSvc.CanAccess(ctx, access.ResourcePatient, patientID); err != nil {
		switch err {
		case access.ErrNotFound, access.ErrForbidden:
			return domain.LabOrder{}, domain.ErrInvalidPatient
		default:
			return domain.LabOrder{}, err
		}
	}

	testName := strings.TrimSpace(req.TestName)
	if testName == "" {
		return domain.LabOrder{}, domain.ErrInvalidTest
	}

	priority := strings.ToUpper(strings.TrimSpace(req.Priority))
	switch priority {
	case "":
		priority = "ROUTINE"
	case "ROUTINE", "URGENT", "STAT":
	default:
		return domain.LabOrder{}, domain.ErrInvalidTest
	}

	now := time.Now().UTC()
	order := domain.LabOrder{
		ID:         s.genID.Generate(),
		ProviderID: providerID,
		PatientID:  patientID,
		TestName:   testName,
		TestCode:   strings.TrimSpace(req.TestCode),
		Status:     domain.LabOrderStatusOrdered,
		Priority:   priority,
		Notes:      strings.TrimSpace(req.Notes),
		OrderedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if raw := strings.TrimSpace(req.VisitID); raw != "" {
		visitID, err := snowflake.ParseString(raw)
		if err != nil || visitID == 0 {
			return domain.LabOrder{}, domain.ErrInvalidVisit
		}
		if err := s.accessSvc.CanAccess(ctx, access.ResourceVisit, visitID); err != nil {
			switch err {
			case access.ErrNotFound, access.ErrForbidden:
				return domain.LabOrder{}, domain.ErrInvalidVisit
			default:
				return domain.LabOrder{}, err
			}
		}
		order.VisitID = &visitID
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return domain.LabOrder{}, err
	}

	if s.auditSvc != nil {
		targetID := order.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "laborder.create", "lab_order", &targetID, map[string]any{
			"patient_id": patientID.String(),
			"test_name":  testName,
		})
	}

	return order, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetLabOrderRequest) (domain.LabOrder, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.LabOrder{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.LabOrder{}, err
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) List(ctx context.Context, req domain.ListLabOrderRequest) (domain.ListLabOrderResponse, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.ListLabOrderResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).
		Model(&domain.LabOrder{}).
		Where("provider_id = ?", providerID)
	if raw := strings.TrimSpace(req.PatientID); raw != "" {
		patientID, err := snowflake.ParseString(raw)
		if err != nil || patientID == 0 {
			return domain.ListLabOrderResponse{}, domain.ErrInvalidPatient
		}
		stmt = stmt.Where("patient_id = ?", patientID)
	}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var orders []domain.LabOrder
	if err := stmt.Order("ordered_at desc, id desc").Find(&orders).Error; err != nil {
		return domain.ListLabOrderResponse{}, err
	}
	return domain.ListLabOrderResponse{LabOrders: orders}, nil
}

func (s *Service) Transition(ctx context.Context, req domain.TransitionLabOrderRequest) (domain.LabOrder, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.LabOrder{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.LabOrder{}, err
	}

	next := domain.LabOrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	switch next {
	case domain.LabOrderStatusInProgress, domain.LabOrderStatusCancelled:
	case domain.LabOrderStatusCompleted:
		// Completion must go through RecordResults.
		return domain.LabOrder{}, domain.ErrInvalidTransition
	default:
		return domain.LabOrder{}, domain.ErrInvalidStatus
	}

	order, err := s.load(ctx, providerID, id)
	if err != nil {
		return domain.LabOrder{}, err
	}
	if !domain.CanTransition(order.Status, next) {
		return domain.LabOrder{}, domain.ErrInvalidTransition
	}

	res := s.db.WithContext(ctx).Exec(
		`UPDATE lab_orders SET status = ?, updated_at = ? WHERE provider_id = ? AND id = ? AND status = ?`,
		next, time.Now().UTC(), providerID, id, order.Status,
	)
	if res.Error != nil {
		return domain.LabOrder{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.LabOrder{}, domain.ErrInvalidTransition
	}

	if s.auditSvc != nil {
		targetID := id.String()
		_ = s.auditSvc.Record(ctx, providerID, "laborder.transition", "lab_order", &targetID, map[string]any{
			"from": string(order.Status),
			"to":   string(next),
		})
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) RecordResults(ctx context.Context, req domain.RecordResultsRequest) (domain.LabOrder, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.LabOrder{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.LabOrder{}, err
	}
	if len(req.Results) == 0 {
		return domain.LabOrder{}, domain.ErrEmptyResults
	}

	order, err := s.load(ctx, providerID, id)
	if err != nil {
		return domain.LabOrder{}, err
	}
	if !domain.CanTransition(order.Status, domain.LabOrderStatusCompleted) {
		return domain.LabOrder{}, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	notes := order.Notes
	if trimmed := strings.TrimSpace(req.Notes); trimmed != "" {
		notes = trimmed
	}

	res := s.db.WithContext(ctx).Model(&domain.LabOrder{}).
		Where("provider_id = ? AND id = ? AND status = ?", providerID, id, order.Status).
		Updates(map[string]any{
			"status":       domain.LabOrderStatusCompleted,
			"results":      datatypes.JSONMap(req.Results),
			"notes":        notes,
			"completed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return domain.LabOrder{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.LabOrder{}, domain.ErrInvalidTransition
	}

	if s.auditSvc != nil {
		targetID := id.String()
		_ = s.auditSvc.Record(ctx, providerID, "laborder.record_results", "lab_order", &targetID, map[string]any{
			"patient_id": order.PatientID.String(),
		})
	}

	return s.load(ctx, providerID, id)
}

func (s *Service) load(ctx context.Context, providerID, id snowflake.ID) (domain.LabOrder, error) {
	var order domain.LabOrder
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.LabOrder{}, domain.ErrNotFound
		}
		return domain.LabOrder{}, err
	}
	return order, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
