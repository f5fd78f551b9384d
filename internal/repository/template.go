package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"impact-service/internal/model"
)

// TemplateRepository persists report base templates
type TemplateRepository interface {
	Create(ctx context.Context, t *model.ReportBaseTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReportBaseTemplate, error)
	// ListVisible returns the tenant's own templates plus officials for a
	// category, officials first, newest first.
	ListVisible(ctx context.Context, tenantID uuid.UUID, category model.TemplateCategory) ([]model.ReportBaseTemplate, error)
	// FindTenantDefault returns the tenant's approved default for a
	// category, newest first when more than one exists.
	FindTenantDefault(ctx context.Context, tenantID uuid.UUID, category model.TemplateCategory) (*model.ReportBaseTemplate, error)
	// FindOfficial returns an official template of the category whose
	// title contains the given document category name, case-insensitive.
	FindOfficial(ctx context.Context, category model.TemplateCategory, titleContains string) (*model.ReportBaseTemplate, error)
	// SetAsDefault clears every default of the tenant+category and marks
	// the given template, all inside one transaction.
	SetAsDefault(ctx context.Context, tenantID, templateID uuid.UUID, category model.TemplateCategory) error
	Delete(ctx context.Context, t *model.ReportBaseTemplate) error
}

type gormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository returns a gorm-backed TemplateRepository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &gormTemplateRepository{db: db}
}

func (r *gormTemplateRepository) Create(ctx context.Context, t *model.ReportBaseTemplate) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *gormTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ReportBaseTemplate, error) {
	var t model.ReportBaseTemplate
	if err := r.db.WithContext(ctx).First(&t, "uuid = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormTemplateRepository) ListVisible(ctx context.Context, tenantID uuid.UUID, category model.TemplateCategory) ([]model.ReportBaseTemplate, error) {
	var templates []model.ReportBaseTemplate
	err := r.db.WithContext(ctx).
		Where("(tenant_uuid = ? OR is_official = ?) AND category = ?", tenantID, true, category).
		Order("is_official DESC, created_at DESC").
		Find(&templates).Error
	if err != nil {
		return nil, translate(err)
	}
	return templates, nil
}

func (r *gormTemplateRepository) FindTenantDefault(ctx context.Context, tenantID uuid.UUID, category model.TemplateCategory) (*model.ReportBaseTemplate, error) {
	var t model.ReportBaseTemplate
	err := r.db.WithContext(ctx).
		Where("tenant_uuid = ? AND is_approved = ? AND is_default = ? AND category = ?",
			tenantID, true, true, category).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormTemplateRepository) FindOfficial(ctx context.Context, category model.TemplateCategory, titleContains string) (*model.ReportBaseTemplate, error) {
	var t model.ReportBaseTemplate
	err := r.db.WithContext(ctx).
		Where("is_official = ? AND category = ? AND title ILIKE ?",
			true, category, "%"+titleContains+"%").
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormTemplateRepository) SetAsDefault(ctx context.Context, tenantID, templateID uuid.UUID, category model.TemplateCategory) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ReportBaseTemplate{}).
			Where("tenant_uuid = ? AND category = ?", tenantID, category).
			Update("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&model.ReportBaseTemplate{}).
			Where("uuid = ?", templateID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}

func (r *gormTemplateRepository) Delete(ctx context.Context, t *model.ReportBaseTemplate) error {
	return translate(r.db.WithContext(ctx).Delete(t).Error)
}
