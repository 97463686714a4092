package service

import (
	"context"
	"math"
	"strings"
	"time"

	auditdomain "github.com/bizzy604/HIS-sub000/internal/audit/domain"
	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/pharmacy/domain"
	"github.com/bizzy604/HIS-sub000/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	medicines repository.Repository[domain.Medicine]
	auditSvc  auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("pharmacy.service"),
		genID:     p.GenID,
		medicines: repository.ProvideStore[domain.Medicine](p.DB),
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) CreateMedicine(ctx context.Context, req domain.CreateMedicineRequest) (domain.Medicine, error) {
	if _, ok := authctx.ProviderIDFromContext(ctx); !ok {
		return domain.Medicine{}, domain.ErrUnauthenticated
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Medicine{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	medicine := domain.Medicine{
		ID:             s.genID.Generate(),
		Name:           name,
		GenericName:    strings.TrimSpace(req.GenericName),
		Form:           strings.TrimSpace(req.Form),
		Strength:       strings.TrimSpace(req.Strength),
		ReorderLevel:   req.ReorderLevel,
		UnitPriceCents: toCents(req.UnitPrice),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.medicines.Create(ctx, &medicine); err != nil {
		return domain.Medicine{}, err
	}

	return medicine, nil
}

func (s *Service) GetMedicine(ctx context.Context, req domain.GetMedicineRequest) (domain.Medicine, error) {
	if _, ok := authctx.ProviderIDFromContext(ctx); !ok {
		return domain.Medicine{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Medicine{}, err
	}

	item, err := s.medicines.FindOne(ctx, &domain.Medicine{ID: id})
	if err != nil {
		return domain.Medicine{}, err
	}
	if item == nil {
		return domain.Medicine{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) ListMedicines(ctx context.Context, req domain.ListMedicineRequest) (domain.ListMedicineResponse, error) {
	if _, ok := authctx.ProviderIDFromContext(ctx); !ok {
		return domain.ListMedicineResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).Model(&domain.Medicine{})
	if q := strings.TrimSpace(req.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR LOWER(generic_name) LIKE ?", like, like)
	}
	if req.LowStock {
		stmt = stmt.Where("stock_quantity <= reorder_level")
	}

	var medicines []domain.Medicine
	if err := stmt.Order("name asc").Find(&medicines).Error; err != nil {
		return domain.ListMedicineResponse{}, err
	}
	return domain.ListMedicineResponse{Medicines: medicines}, nil
}

func (s *Service) UpdateMedicine(ctx context.Context, req domain.UpdateMedicineRequest) (domain.Medicine, error) {
	if _, ok := authctx.ProviderIDFromContext(ctx); !ok {
		return domain.Medicine{}, domain.ErrUnauthenticated
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Medicine{}, err
	}

	existing, err := s.medicines.FindOne(ctx, &domain.Medicine{ID: id})
	if err != nil {
		return domain.Medicine{}, err
	}
	if existing == nil {
		return domain.Medicine{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Medicine{}, domain.ErrInvalidName
		}
		existing.Name = name
	}
	if req.GenericName != nil {
		existing.GenericName = strings.TrimSpace(*req.GenericName)
	}
	if req.Form != nil {
		existing.Form = strings.TrimSpace(*req.Form)
	}
	if req.Strength != nil {
		existing.Strength = strings.TrimSpace(*req.Strength)
	}
	if req.ReorderLevel != nil {
		existing.ReorderLevel = *req.ReorderLevel
	}
	if req.UnitPrice != nil {
		existing.UnitPriceCents = toCents(*req.UnitPrice)
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return domain.Medicine{}, err
	}
	return *existing, nil
}

func (s *Service) ReceiveBatch(ctx context.Context, req domain.ReceiveBatchRequest) (domain.MedicineBatch, error) {
	providerID, ok := authctx.ProviderIDFromContext(ctx)
	if !ok {
		return domain.MedicineBatch{}, domain.ErrUnauthenticated
	}

	medicineID, err := s.parseID(req.MedicineID)
	if err != nil {
		return domain.MedicineBatch{}, err
	}
	batchNumber := strings.TrimSpace(req.BatchNumber)
	if batchNumber == "" {
		return domain.MedicineBatch{}, domain.ErrInvalidBatch
	}
	if req.Quantity <= 0 {
		return domain.MedicineBatch{}, domain.ErrInvalidQuantity
	}

	now := time.Now().UTC()
	batch := domain.MedicineBatch{
		ID:          s.genID.Generate(),
		MedicineID:  medicineID,
		BatchNumber: batchNumber,
		Quantity:    req.Quantity,
		CostCents:   toCents(req.Cost),
		ExpiryDate:  req.ExpiryDate,
		ReceivedAt:  now,
		CreatedAt:   now,
	}

	// Batch insert and the stock increment commit or roll back together.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE medicines SET stock_quantity = stock_quantity + ?, updated_at = ? WHERE id = ?`,
			req.Quantity, now, medicineID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Create(&batch).Error
	})
	if err != nil {
		return domain.MedicineBatch{}, err
	}

	if s.auditSvc != nil {
		targetID := batch.ID.String()
		_ = s.auditSvc.Record(ctx, providerID, "medicine.batch_received", "medicine_batch", &targetID, map[string]any{
			"medicine_id": medicineID.String(),
			"quantity":    req.Quantity,
		})
	}

	return batch, nil
}

func (s *Service) ListBatches(ctx context.Context, req domain.ListBatchRequest) (domain.ListBatchResponse, error) {
	if _, ok := authctx.ProviderIDFromContext(ctx); !ok {
		return domain.ListBatchResponse{}, domain.ErrUnauthenticated
	}

	stmt := s.db.WithContext(ctx).Model(&domain.MedicineBatch{})
	if raw := strings.TrimSpace(req.MedicineID); raw != "" {
		medicineID, err := s.parseID(raw)
		if err != nil {
			return domain.ListBatchResponse{}, err
		}
		stmt = stmt.Where("medicine_id = ?", medicineID)
	}
	if req.ExpiringWithin > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, req.ExpiringWithin)
		stmt = stmt.Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff)
	}

	var batches []domain.MedicineBatch
	if err := stmt.Order("received_at desc, id desc").Find(&batches).Error; err != nil {
		return domain.ListBatchResponse{}, err
	}
	return domain.ListBatchResponse{Batches: batches}, nil
}

func (s *Service) DecrementStock(ctx context.Context, tx *gorm.DB, medicineID snowflake.ID, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	res := tx.WithContext(ctx).Exec(
		`UPDATE medicines SET stock_quantity = stock_quantity - ?, updated_at = ? WHERE id = ? AND stock_quantity >= ?`,
		quantity, time.Now().UTC(), medicineID, quantity,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.WithContext(ctx).Model(&domain.Medicine{}).Where("id = ?", medicineID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
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

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
