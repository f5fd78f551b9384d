package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"impact-service/internal/model"
)

// PortfolioRepository persists portfolios
type PortfolioRepository interface {
	Create(ctx context.Context, p *model.Portfolio) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Portfolio, error)
	// FindByReport looks up the impact report record for the
	// (report, tenant, user) combination, for the find-or-create invariant.
	FindByReport(ctx context.Context, reportID string, tenantID, userID uuid.UUID) (*model.Portfolio, error)
	// FindAnyByReport looks up an impact report record by report ID alone,
	// for unauthenticated rendering paths.
	FindAnyByReport(ctx context.Context, reportID string) (*model.Portfolio, error)
	ListByUser(ctx context.Context, userID uuid.UUID, category model.PortfolioCategory, limit int) ([]model.Portfolio, error)
	Update(ctx context.Context, p *model.Portfolio) error
	Delete(ctx context.Context, p *model.Portfolio) error
}

type gormPortfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository returns a gorm-backed PortfolioRepository
func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &gormPortfolioRepository{db: db}
}

func (r *gormPortfolioRepository) Create(ctx context.Context, p *model.Portfolio) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormPortfolioRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Portfolio, error) {
	var p model.Portfolio
	if err := r.db.WithContext(ctx).First(&p, "uuid = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPortfolioRepository) FindByReport(ctx context.Context, reportID string, tenantID, userID uuid.UUID) (*model.Portfolio, error) {
	var p model.Portfolio
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND tenant_uuid = ? AND user_uuid = ? AND category = ?",
			reportID, tenantID, userID, model.CategoryImpactReport).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPortfolioRepository) FindAnyByReport(ctx context.Context, reportID string) (*model.Portfolio, error) {
	var p model.Portfolio
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND category = ?", reportID, model.CategoryImpactReport).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPortfolioRepository) ListByUser(ctx context.Context, userID uuid.UUID, category model.PortfolioCategory, limit int) ([]model.Portfolio, error) {
	q := r.db.WithContext(ctx).Where("user_uuid = ?", userID).Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var portfolios []model.Portfolio
	if err := q.Find(&portfolios).Error; err != nil {
		return nil, translate(err)
	}
	return portfolios, nil
}

func (r *gormPortfolioRepository) Update(ctx context.Context, p *model.Portfolio) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *gormPortfolioRepository) Delete(ctx context.Context, p *model.Portfolio) error {
	return translate(r.db.WithContext(ctx).Delete(p).Error)
}
