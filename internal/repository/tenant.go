package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"impact-service/internal/model"
)

// TenantRepository persists tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	// FindByName matches the tenant name case-insensitively
	FindByName(ctx context.Context, name string) (*model.Tenant, error)
	Update(ctx context.Context, t *model.Tenant) error
}

type gormTenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository returns a gorm-backed TenantRepository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &gormTenantRepository{db: db}
}

func (r *gormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var t model.Tenant
	if err := r.db.WithContext(ctx).First(&t, "uuid = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormTenantRepository) FindByName(ctx context.Context, name string) (*model.Tenant, error) {
	var t model.Tenant
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormTenantRepository) Update(ctx context.Context, t *model.Tenant) error {
	return translate(r.db.WithContext(ctx).Save(t).Error)
}
