package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"impact-service/internal/blob"
	"impact-service/internal/model"
	"impact-service/internal/repository"
	"impact-service/pkg/logger"
)

const untitledReportTitle = "Untitled Report"

// reportDocument is the stored JSON envelope of an editor report
type reportDocument struct {
	ReportContent   string          `json:"report_content"`
	ReportCitations json.RawMessage `json:"report_citations"`
	ResearchChunks  json.RawMessage `json:"research_chunks"`
}

// UploadReportInput carries an editor save request
type UploadReportInput struct {
	ReportID        string
	ReportContent   string
	ReportCitations json.RawMessage
	ResearchChunks  json.RawMessage
}

// Report is a fetched editor report
type Report struct {
	ReportID        string          `json:"report_id"`
	ReportTitle     string          `json:"report_title"`
	ReportContent   string          `json:"report_content"`
	ReportCitations json.RawMessage `json:"report_citations"`
	ResearchChunks  json.RawMessage `json:"research_chunks"`
}

// ReportListEntry is one stored report document in a tenant listing
type ReportListEntry struct {
	FileName       string `json:"file_name"`
	ETag           string `json:"etag"`
	ReportID       string `json:"report_id"`
	ReportTitle    string `json:"report_title"`
	CreatedAt      string `json:"created_at"`
	LastModifiedAt string `json:"last_modified_at"`
	CreatedBy      string `json:"created_by"`
}

// EditorService persists editor reports as JSON blobs keyed by report ID,
// with a portfolio row created on first save so the report shows up in
// the owner's portfolio list.
type EditorService struct {
	portfolios   repository.PortfolioRepository
	store        blob.Store
	httpClient   *http.Client
	reportBucket string
}

func NewEditorService(portfolios repository.PortfolioRepository, store blob.Store, httpClient *http.Client, reportBucket string) *EditorService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EditorService{
		portfolios:   portfolios,
		store:        store,
		httpClient:   httpClient,
		reportBucket: reportBucket,
	}
}

// sanitizeMetadataValue strips non-ASCII runes, which the object store
// rejects in metadata headers.
func sanitizeMetadataValue(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extractReportTitle(content string) string {
	if title, ok := firstTagText([]byte(content), "h1"); ok && title != "" {
		return title
	}
	return untitledReportTitle
}

// UploadReport saves a report document, creating the backing portfolio
// row on first save and refreshing its title on every save. Saves always
// overwrite; the document is the editor's source of truth.
func (s *EditorService) UploadReport(ctx context.Context, userID, tenantID uuid.UUID, userEmail string, input UploadReportInput) error {
	reportID := sanitizeMetadataValue(input.ReportID)
	if reportID == "" {
		return fmt.Errorf("%w: report_id is required", ErrValidation)
	}
	title := sanitizeMetadataValue(extractReportTitle(input.ReportContent))

	portfolio, err := s.portfolios.FindByReport(ctx, reportID, tenantID, userID)
	switch {
	case err == nil:
		portfolio.Title = title
		if err := s.portfolios.Update(ctx, portfolio); err != nil {
			return err
		}
	case errors.Is(err, repository.ErrNotFound):
		uid := userID
		portfolio = &model.Portfolio{
			TenantUUID: tenantID,
			UserUUID:   &uid,
			Category:   model.CategoryImpactReport,
			Title:      title,
			ReportID:   reportID,
		}
		if err := s.portfolios.Create(ctx, portfolio); err != nil {
			return err
		}
	default:
		return err
	}

	doc := reportDocument{
		ReportContent:   input.ReportContent,
		ReportCitations: input.ReportCitations,
		ResearchChunks:  input.ResearchChunks,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	now := time.Now().Format("2006-01-02_15-04-05")
	err = s.store.Upload(ctx, s.reportBucket, blob.ReportJSONKey(reportID), data, blob.UploadOptions{
		ContentType: "application/json",
		Overwrite:   true,
		Metadata: map[string]string{
			"Report_ID":        reportID,
			"Report_Title":     title,
			"Created_By_User":  userEmail,
			"Created_At":       now,
			"Last_Modified_At": now,
		},
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("report saved",
		zap.String("report_id", reportID),
		zap.String("title", title))
	return nil
}

// FetchReport loads a stored report document
func (s *EditorService) FetchReport(ctx context.Context, reportID string) (*Report, error) {
	data, err := s.store.Download(ctx, s.reportBucket, blob.ReportJSONKey(reportID))
	if err != nil {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, reportID)
	}

	var doc reportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &Report{
		ReportID:        reportID,
		ReportTitle:     extractReportTitle(doc.ReportContent),
		ReportContent:   doc.ReportContent,
		ReportCitations: doc.ReportCitations,
		ResearchChunks:  doc.ResearchChunks,
	}, nil
}

// FetchReportHTML returns just the HTML body of a stored report. The
// converter gateway renders PDFs from this view, so it must not require
// authentication.
func (s *EditorService) FetchReportHTML(ctx context.Context, reportID string) (string, error) {
	report, err := s.FetchReport(ctx, reportID)
	if err != nil {
		return "", err
	}
	return report.ReportContent, nil
}

// ListReports pages through the tenant's stored report documents
func (s *EditorService) ListReports(ctx context.Context, tenantID uuid.UUID, continuationToken string) ([]ReportListEntry, string, error) {
	page, err := s.store.List(ctx, s.reportBucket, tenantID.String()+"/", continuationToken)
	if err != nil {
		return nil, "", err
	}

	entries := make([]ReportListEntry, 0, len(page.Objects))
	for _, obj := range page.Objects {
		entries = append(entries, ReportListEntry{
			FileName:       obj.Key,
			ETag:           obj.ETag,
			ReportID:       obj.Metadata["Report_ID"],
			ReportTitle:    obj.Metadata["Report_Title"],
			CreatedAt:      obj.Metadata["Created_At"],
			LastModifiedAt: obj.Metadata["Last_Modified_At"],
			CreatedBy:      obj.Metadata["Created_By_User"],
		})
	}
	return entries, page.NextToken, nil
}

// UploadImage stores an editor image under the report's directory. The
// backing portfolio row must exist and belong to the caller.
func (s *EditorService) UploadImage(ctx context.Context, userID, tenantID uuid.UUID, reportID string, file *multipart.FileHeader) (string, error) {
	reportID = sanitizeMetadataValue(reportID)
	if _, err := s.portfolios.FindByReport(ctx, reportID, tenantID, userID); err != nil {
		return "", translateRepoErr(err)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s", reportID, sanitizeMetadataValue(file.Filename))
	err = s.store.Upload(ctx, s.reportBucket, key, data, blob.UploadOptions{
		ContentType: file.Header.Get("Content-Type"),
		Overwrite:   true,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// SaveImageFromURL fetches a remote image and stores it under the
// report's directory. Non-image content types are rejected.
func (s *EditorService) SaveImageFromURL(ctx context.Context, reportID, imageURL string) (string, error) {
	reportID = sanitizeMetadataValue(reportID)
	if imageURL == "" {
		return "", fmt.Errorf("%w: url is required", ErrValidation)
	}
	if _, err := s.portfolios.FindAnyByReport(ctx, reportID); err != nil {
		return "", translateRepoErr(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: image fetch returned %d", ErrValidation, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: the URL does not point to an image", ErrValidation)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(contentType, "image/")
	key := fmt.Sprintf("%s/image_%d.%s", reportID, time.Now().Unix(), ext)
	err = s.store.Upload(ctx, s.reportBucket, key, data, blob.UploadOptions{
		ContentType: contentType,
		Overwrite:   true,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// FetchImage returns a stored editor image and its filename
func (s *EditorService) FetchImage(ctx context.Context, imageKey string) ([]byte, string, error) {
	imageKey = sanitizeMetadataValue(imageKey)
	if imageKey == "" || !strings.Contains(imageKey, "/") {
		return nil, "", fmt.Errorf("%w: image_key is required", ErrValidation)
	}
	data, err := s.store.Download(ctx, s.reportBucket, imageKey)
	if err != nil {
		return nil, "", fmt.Errorf("%w: image %s", ErrNotFound, imageKey)
	}
	_, name := blob.SplitKey(imageKey)
	return data, name, nil
}
