package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"impact-service/internal/model"
)

// DataConnectionRepository persists tenant OAuth connections
type DataConnectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.DataConnection, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.DataConnection, error)
	// ListExpiring returns the tenant's connections that carry an access
	// token expiry; non-expiring connections are excluded.
	ListExpiring(ctx context.Context, tenantID uuid.UUID) ([]model.DataConnection, error)
	Update(ctx context.Context, c *model.DataConnection) error
	Delete(ctx context.Context, c *model.DataConnection) error
}

// DataSourceRepository looks up platform-maintained data sources
type DataSourceRepository interface {
	FindBySlug(ctx context.Context, slug string) (*model.DataSource, error)
}

type gormDataConnectionRepository struct {
	db *gorm.DB
}

// NewDataConnectionRepository returns a gorm-backed DataConnectionRepository
func NewDataConnectionRepository(db *gorm.DB) DataConnectionRepository {
	return &gormDataConnectionRepository{db: db}
}

func (r *gormDataConnectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DataConnection, error) {
	var c model.DataConnection
	if err := r.db.WithContext(ctx).First(&c, "uuid = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormDataConnectionRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.DataConnection, error) {
	var connections []model.DataConnection
	if err := r.db.WithContext(ctx).Where("tenant_uuid = ?", tenantID).Find(&connections).Error; err != nil {
		return nil, translate(err)
	}
	return connections, nil
}

func (r *gormDataConnectionRepository) ListExpiring(ctx context.Context, tenantID uuid.UUID) ([]model.DataConnection, error) {
	var connections []model.DataConnection
	err := r.db.WithContext(ctx).
		Where("tenant_uuid = ? AND access_token_expires_at IS NOT NULL", tenantID).
		Find(&connections).Error
	if err != nil {
		return nil, translate(err)
	}
	return connections, nil
}

func (r *gormDataConnectionRepository) Update(ctx context.Context, c *model.DataConnection) error {
	// Save writes all token fields in a single UPDATE so a refresh never
	// leaves a half-written credential behind.
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *gormDataConnectionRepository) Delete(ctx context.Context, c *model.DataConnection) error {
	return translate(r.db.WithContext(ctx).Delete(c).Error)
}

type gormDataSourceRepository struct {
	db *gorm.DB
}

// NewDataSourceRepository returns a gorm-backed DataSourceRepository
func NewDataSourceRepository(db *gorm.DB) DataSourceRepository {
	return &gormDataSourceRepository{db: db}
}

func (r *gormDataSourceRepository) FindBySlug(ctx context.Context, slug string) (*model.DataSource, error) {
	var s model.DataSource
	if err := r.db.WithContext(ctx).First(&s, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}
