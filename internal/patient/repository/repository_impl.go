package repository

import (
	"context"
	"strings"

	"github.com/bizzy604/HIS-sub000/internal/patient/domain"
	"github.com/bizzy604/HIS-sub000/pkg/db/option"
	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, patient *domain.Patient) error {
	return db.WithContext(ctx).Create(patient).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID) (*domain.Patient, error) {
	var patient domain.Patient
	err := db.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&patient).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *repo) FindByMRN(ctx context.Context, db *gorm.DB, providerID snowflake.ID, mrn string) (*domain.Patient, error) {
	var patient domain.Patient
	err := db.WithContext(ctx).
		Where("provider_id = ? AND mrn = ?", providerID, mrn).
		First(&patient).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, providerID snowflake.ID, filter domain.ListPatientFilter, page pagination.Pagination) ([]*domain.Patient, error) {
	var patients []*domain.Patient
	stmt := db.WithContext(ctx).
		Model(&domain.Patient{}).
		Where("provider_id = ?", providerID)
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR LOWER(mrn) LIKE ?", like, like)
	}
	if filter.Gender != "" {
		stmt = stmt.Where("gender = ?", filter.Gender)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, patient *domain.Patient) error {
	return db.WithContext(ctx).
		Model(&domain.Patient{}).
		Where("provider_id = ? AND id = ?", patient.ProviderID, patient.ID).
		Updates(patient).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		Delete(&domain.Patient{}).Error
}
