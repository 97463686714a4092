package domain

import (
	"context"

	"github.com/bizzy604/HIS-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListPatientFilter struct {
	Query  string
	Gender string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, patient *Patient) error
	FindByID(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID) (*Patient, error)
	FindByMRN(ctx context.Context, db *gorm.DB, providerID snowflake.ID, mrn string) (*Patient, error)
	List(ctx context.Context, db *gorm.DB, providerID snowflake.ID, filter ListPatientFilter, page pagination.Pagination) ([]*Patient, error)
	Update(ctx context.Context, db *gorm.DB, patient *Patient) error
	Delete(ctx context.Context, db *gorm.DB, providerID, id snowflake.ID) error
}
