package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"impact-service/internal/blob"
	"impact-service/internal/converter"
	"impact-service/internal/model"
	"impact-service/pkg/logger"
	"impact-service/prometheus"
)

// ReportService materializes portfolios into rendered output formats.
// The blob store doubles as the cache: the target key is derived
// deterministically from the source, and a present blob is immutable and
// served verbatim. Misses call the converter gateway and store the result
// back before returning it.
type ReportService struct {
	store        blob.Store
	conv         converter.Client
	templates    *TemplateService
	reportBucket string
	apiDomain    string
}

// NewReportService builds a ReportService
func NewReportService(store blob.Store, conv converter.Client, templates *TemplateService, reportBucket, apiDomain string) *ReportService {
	return &ReportService{
		store:        store,
		conv:         conv,
		templates:    templates,
		reportBucket: reportBucket,
		apiDomain:    apiDomain,
	}
}

// Materialize produces the portfolio in the requested format. Impact
// reports are keyed by report ID; everything else derives the target key
// from the source HTML key.
func (s *ReportService) Materialize(ctx context.Context, p *model.Portfolio, format Format, userID uuid.UUID) ([]byte, error) {
	prometheus.MaterializeCounter.WithLabelValues(string(format)).Inc()

	if p.Category == model.CategoryImpactReport && p.ReportID != "" {
		switch format {
		case FormatPDF:
			return s.impactPDF(ctx, p.ReportID)
		case FormatDOC:
			return s.impactDOC(ctx, p.ReportID)
		case FormatPPT:
			return nil, fmt.Errorf("%w: impact reports cannot be rendered to PPT", ErrValidation)
		}
	}

	switch format {
	case FormatPDF:
		return s.documentPDF(ctx, p, userID)
	case FormatPPT:
		return s.documentPPT(ctx, p)
	case FormatDOC:
		return s.documentDOC(ctx, p, userID)
	}
	return nil, fmt.Errorf("%w: unknown file type %q", ErrValidation, format)
}

// cached returns the blob when present. The second return reports the hit.
func (s *ReportService) cached(ctx context.Context, format Format, key string) ([]byte, bool, error) {
	exists, err := s.store.Exists(ctx, s.reportBucket, key)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		prometheus.MaterializeCacheCounter.WithLabelValues(string(format), "miss").Inc()
		return nil, false, nil
	}
	prometheus.MaterializeCacheCounter.WithLabelValues(string(format), "hit").Inc()
	data, err := s.store.Download(ctx, s.reportBucket, key)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *ReportService) persist(ctx context.Context, format Format, key string, data []byte) error {
	return s.store.Upload(ctx, s.reportBucket, key, data, blob.UploadOptions{
		ContentType: format.ContentType(),
		Overwrite:   true,
	})
}

// impactPDF renders the public HTML view of the report JSON payload
func (s *ReportService) impactPDF(ctx context.Context, reportID string) ([]byte, error) {
	key := blob.ReportKey(reportID, FormatPDF.Ext())
	if data, hit, err := s.cached(ctx, FormatPDF, key); err != nil || hit {
		return data, err
	}

	reportURL := fmt.Sprintf("%s/api/core/fetch-report-as-html/?report_id=%s", s.apiDomain, reportID)
	data, err := s.conv.HTMLToPDF(ctx, reportURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if err := s.persist(ctx, FormatPDF, key, data); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("materialized impact report PDF", zap.String("key", key))
	return data, nil
}

// impactDOC converts to DOCX. The converter reads the PDF variant, so it
// is materialized first as a precondition.
func (s *ReportService) impactDOC(ctx context.Context, reportID string) ([]byte, error) {
	if _, err := s.impactPDF(ctx, reportID); err != nil {
		return nil, err
	}

	key := blob.ReportKey(reportID, FormatDOC.Ext())
	if data, hit, err := s.cached(ctx, FormatDOC, key); err != nil || hit {
		return data, err
	}

	data, err := s.conv.HTMLToDOC(ctx, reportID, reportID+".html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if err := s.persist(ctx, FormatDOC, key, data); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("materialized impact report DOCX", zap.String("key", key))
	return data, nil
}

// documentPDF renders the stored HTML document through the public
// download view, which wraps it in the tenant's base template.
func (s *ReportService) documentPDF(ctx context.Context, p *model.Portfolio, userID uuid.UUID) ([]byte, error) {
	key := blob.DerivedKey(p.HTMLFileKey, FormatPDF.Ext())
	if data, hit, err := s.cached(ctx, FormatPDF, key); err != nil || hit {
		return data, err
	}

	sourceURL := fmt.Sprintf("%s/api/core/download/%s/?show_html=true&category=%s&is_portfolio_page=true&user_id=%s",
		s.apiDomain, p.HTMLFileKey, p.Category, userID)
	data, err := s.conv.HTMLToPDF(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if err := s.persist(ctx, FormatPDF, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// documentPPT resolves the governing base template first; a missing
// template is fatal for the request.
func (s *ReportService) documentPPT(ctx context.Context, p *model.Portfolio) ([]byte, error) {
	key := blob.DerivedKey(p.HTMLFileKey, FormatPPT.Ext())
	if data, hit, err := s.cached(ctx, FormatPPT, key); err != nil || hit {
		return data, err
	}

	tpl, err := s.templates.Resolve(ctx, p.TenantUUID, model.TemplatePPT, p.Category)
	if err != nil {
		return nil, err
	}

	pathName, htmlName := blob.SplitKey(p.HTMLFileKey)
	data, err := s.conv.HTMLToPPT(ctx, pathName, htmlName, tpl.FileName())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if err := s.persist(ctx, FormatPPT, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// documentDOC ensures the PDF variant exists before its own conversion
func (s *ReportService) documentDOC(ctx context.Context, p *model.Portfolio, userID uuid.UUID) ([]byte, error) {
	if _, err := s.documentPDF(ctx, p, userID); err != nil {
		return nil, err
	}

	key := blob.DerivedKey(p.HTMLFileKey, FormatDOC.Ext())
	if data, hit, err := s.cached(ctx, FormatDOC, key); err != nil || hit {
		return data, err
	}

	pathName, htmlName := blob.SplitKey(p.HTMLFileKey)
	data, err := s.conv.HTMLToDOC(ctx, pathName, htmlName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if err := s.persist(ctx, FormatDOC, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteArtifacts removes every stored blob belonging to a portfolio.
// Impact reports own the `{report_id}/` directory; other portfolios own
// the parent directory of their single HTML key.
func (s *ReportService) DeleteArtifacts(ctx context.Context, p *model.Portfolio) error {
	var prefix string
	if p.Category == model.CategoryImpactReport {
		prefix = p.ReportID + "/"
	} else {
		prefix = blob.ParentPrefix(p.HTMLFileKey)
	}
	if prefix == "" || prefix == "/" {
		return nil
	}
	return s.store.DeletePrefix(ctx, s.reportBucket, prefix)
}
