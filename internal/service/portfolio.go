package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"impact-service/internal/blob"
	"impact-service/internal/model"
	"impact-service/internal/repository"
	"impact-service/pkg/logger"
	"impact-service/prometheus"
)

const latestPortfolioCount = 3

// CreatePortfolioInput carries the client-supplied fields of a new portfolio
type CreatePortfolioInput struct {
	Category      model.PortfolioCategory
	Description   string
	HTMLFileKey   string
	ImageFileKeys []string
	ReportID      string
}

// PortfolioService owns the portfolio lifecycle. Source documents are
// produced in a staging bucket by the authoring tools; creating a
// portfolio copies them into the report bucket, which this service owns.
type PortfolioService struct {
	portfolios    repository.PortfolioRepository
	store         blob.Store
	reports       *ReportService
	stagingBucket string
	reportBucket  string
}

func NewPortfolioService(portfolios repository.PortfolioRepository, store blob.Store, reports *ReportService, stagingBucket, reportBucket string) *PortfolioService {
	return &PortfolioService{
		portfolios:    portfolios,
		store:         store,
		reports:       reports,
		stagingBucket: stagingBucket,
		reportBucket:  reportBucket,
	}
}

// Create copies the source document and its images out of the staging
// bucket and records the portfolio. The title is read from the first h4
// heading of the source HTML.
func (s *PortfolioService) Create(ctx context.Context, userID, tenantID uuid.UUID, input CreatePortfolioInput) (*model.Portfolio, error) {
	if !input.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, input.Category)
	}
	if input.HTMLFileKey == "" {
		return nil, fmt.Errorf("%w: html_file_key is required", ErrValidation)
	}

	if err := s.store.Copy(ctx, s.stagingBucket, input.HTMLFileKey, s.reportBucket, input.HTMLFileKey); err != nil {
		return nil, err
	}
	for _, key := range input.ImageFileKeys {
		if err := s.store.Copy(ctx, s.stagingBucket, key, s.reportBucket, key); err != nil {
			return nil, err
		}
	}

	title, err := s.sniffTitle(ctx, input.HTMLFileKey, input.Category)
	if err != nil {
		return nil, err
	}

	uid := userID
	portfolio := &model.Portfolio{
		TenantUUID:  tenantID,
		UserUUID:    &uid,
		Category:    input.Category,
		Title:       title,
		Description: input.Description,
		HTMLFileKey: input.HTMLFileKey,
		ReportID:    input.ReportID,
	}
	if err := s.portfolios.Create(ctx, portfolio); err != nil {
		return nil, err
	}

	prometheus.RecordPortfolioOperation("create")
	logger.FromContext(ctx).Info("portfolio created",
		zap.String("portfolio_id", portfolio.UUID.String()),
		zap.String("category", string(portfolio.Category)))
	return portfolio, nil
}

func (s *PortfolioService) sniffTitle(ctx context.Context, htmlFileKey string, category model.PortfolioCategory) (string, error) {
	html, err := s.store.Download(ctx, s.stagingBucket, htmlFileKey)
	if err != nil {
		return "", err
	}
	if title, ok := firstTagText(html, "h4"); ok && title != "" {
		return title, nil
	}
	return fmt.Sprintf("Data%s_%s", category, time.Now().Format("2006-01-02_15-04-05")), nil
}

// Get returns a portfolio owned by the caller. Someone else's portfolio
// is indistinguishable from a missing one.
func (s *PortfolioService) Get(ctx context.Context, id, userID uuid.UUID) (*model.Portfolio, error) {
	portfolio, err := s.portfolios.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if err := AuthorizePortfolio(portfolio, userID); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// List returns the caller's portfolios, newest first, optionally filtered
// by category.
func (s *PortfolioService) List(ctx context.Context, userID uuid.UUID, category model.PortfolioCategory) ([]model.Portfolio, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	return s.portfolios.ListByUser(ctx, userID, category, 0)
}

// Latest returns the caller's three most recent portfolios across categories
func (s *PortfolioService) Latest(ctx context.Context, userID uuid.UUID) ([]model.Portfolio, error) {
	return s.portfolios.ListByUser(ctx, userID, "", latestPortfolioCount)
}

// Delete removes the portfolio row together with every blob it owns
func (s *PortfolioService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	portfolio, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.reports.DeleteArtifacts(ctx, portfolio); err != nil {
		return err
	}
	if err := s.portfolios.Delete(ctx, portfolio); err != nil {
		return err
	}

	prometheus.RecordPortfolioOperation("delete")
	logger.FromContext(ctx).Info("portfolio deleted", zap.String("portfolio_id", id.String()))
	return nil
}
