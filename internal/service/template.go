package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"impact-service/internal/model"
	"impact-service/internal/repository"
	"impact-service/pkg/logger"
	"impact-service/prometheus"
)

// TemplateService resolves and manages report base templates
type TemplateService struct {
	templates repository.TemplateRepository
}

// NewTemplateService builds a TemplateService
func NewTemplateService(templates repository.TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates}
}

// Resolve picks the template governing rendering for a tenant: the
// tenant's approved default first, otherwise an official template whose
// title contains the document category name. Returns ErrTemplateNotFound
// when neither exists; callers must treat that as fatal for conversion.
func (s *TemplateService) Resolve(ctx context.Context, tenantID uuid.UUID, category model.TemplateCategory, docCategory model.PortfolioCategory) (*model.ReportBaseTemplate, error) {
	tpl, err := s.templates.FindTenantDefault(ctx, tenantID, category)
	if err == nil {
		return tpl, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	tpl, err = s.templates.FindOfficial(ctx, category, string(docCategory))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

// List returns the templates visible to a tenant: its own plus officials.
// No in-memory default promotion happens here; the default flag reflects
// exactly what is persisted.
func (s *TemplateService) List(ctx context.Context, tenantID uuid.UUID, category model.TemplateCategory) ([]model.ReportBaseTemplate, error) {
	prometheus.RecordTemplateOperation("list")
	return s.templates.ListVisible(ctx, tenantID, category)
}

// Get fetches a single template, applying the tenant guard
func (s *TemplateService) Get(ctx context.Context, tenantID, templateID uuid.UUID) (*model.ReportBaseTemplate, error) {
	tpl, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := AuthorizeTenantResource(tpl.TenantUUID, tenantID); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Create stores a tenant-owned template
func (s *TemplateService) Create(ctx context.Context, tpl *model.ReportBaseTemplate) error {
	prometheus.RecordTemplateOperation("create")
	return s.templates.Create(ctx, tpl)
}

// SetAsDefault reassigns the tenant+category default to the given
// template. The clear-then-set runs in one transaction so exactly one
// default survives no matter how calls interleave.
func (s *TemplateService) SetAsDefault(ctx context.Context, tenantID, templateID uuid.UUID, category model.TemplateCategory) error {
	prometheus.RecordTemplateOperation("set_default")

	if _, err := s.Get(ctx, tenantID, templateID); err != nil {
		return err
	}

	if err := s.templates.SetAsDefault(ctx, tenantID, templateID, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	logger.FromContext(ctx).Info("template set as default",
		zap.String("template_id", templateID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("category", string(category)))
	return nil
}

// Delete removes a tenant-owned template. Official templates are never
// deleted through this path.
func (s *TemplateService) Delete(ctx context.Context, tenantID, templateID uuid.UUID) error {
	prometheus.RecordTemplateOperation("delete")

	tpl, err := s.Get(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	if tpl.IsOfficial {
		return nil
	}
	return s.templates.Delete(ctx, tpl)
}
