package service

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"impact-service/internal/blob"
	"impact-service/internal/model"
	"impact-service/internal/repository"
	"impact-service/prometheus"
)

// imgSrcPattern matches inline image references in stored documents,
// including the file:// form the chat bot renderer emits.
var imgSrcPattern = regexp.MustCompile(`<img src=["'](?:file://)?([^"']+?)["']`)

// contentSlot is where the base template receives the document body
var contentSlot = regexp.MustCompile(`\{\{\s*blob_content\s*\}\}`)

// templateBlobPrefix is the media bucket directory holding template files
const templateBlobPrefix = "base_report_template/"

// DownloadBuckets names the containers the download view reads from.
// Documents live in the chat bot bucket until they are saved to a
// portfolio, after which the report bucket holds them.
type DownloadBuckets struct {
	ChatBot string
	Report  string
	Media   string
}

// DownloadService serves stored blobs to browsers and to the converter
// gateway. The HTML path wraps the document in the tenant's PDF base
// template and rewrites inline image references back through this same
// endpoint so the converter can resolve them over HTTP.
type DownloadService struct {
	store     blob.Store
	users     repository.UserRepository
	templates *TemplateService
	buckets   DownloadBuckets
	apiDomain string
}

// NewDownloadService builds a DownloadService
func NewDownloadService(store blob.Store, users repository.UserRepository, templates *TemplateService, buckets DownloadBuckets, apiDomain string) *DownloadService {
	return &DownloadService{
		store:     store,
		users:     users,
		templates: templates,
		buckets:   buckets,
		apiDomain: apiDomain,
	}
}

// documentBucket picks the container a key is read from
func (s *DownloadService) documentBucket(isPortfolioPage bool) string {
	if isPortfolioPage {
		return s.buckets.Report
	}
	return s.buckets.ChatBot
}

// Fetch returns the raw blob and its content type, sniffed from the key
// extension with a fallback on the leading bytes.
func (s *DownloadService) Fetch(ctx context.Context, key string, isPortfolioPage bool) ([]byte, string, error) {
	prometheus.RecordDownload("file")

	data, err := s.store.Download(ctx, s.documentBucket(isPortfolioPage), key)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// FetchImage returns an inline image referenced by a rendered document
func (s *DownloadService) FetchImage(ctx context.Context, key string, isPortfolioPage bool) ([]byte, error) {
	prometheus.RecordDownload("image")

	data, err := s.store.Download(ctx, s.documentBucket(isPortfolioPage), key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, nil
}

// RenderHTML wraps the stored document in the base template governing the
// requesting user's tenant. Inline image references are rewritten to
// absolute download URLs first so the converter can fetch them. The
// user resolves the tenant because the converter calls this endpoint
// without the user's credentials.
func (s *DownloadService) RenderHTML(ctx context.Context, key string, isPortfolioPage bool, category model.PortfolioCategory, userID uuid.UUID) (string, error) {
	prometheus.RecordDownload("html")

	data, err := s.store.Download(ctx, s.documentBucket(isPortfolioPage), key)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	dir := blob.ParentPrefix(key)
	document := s.rewriteImageSources(string(data), dir, isPortfolioPage)

	base, err := s.baseTemplate(ctx, category, userID)
	if err != nil {
		return "", err
	}
	return contentSlot.ReplaceAllLiteralString(base, document), nil
}

// rewriteImageSources points every inline image at the download endpoint
func (s *DownloadService) rewriteImageSources(document, dir string, isPortfolioPage bool) string {
	return imgSrcPattern.ReplaceAllStringFunc(document, func(match string) string {
		imageName := imgSrcPattern.FindStringSubmatch(match)[1]
		key := imageName
		if dir != "" {
			key = dir + "/" + imageName
		}
		url := fmt.Sprintf("%s/api/core/download/%s/?show_image=true", s.apiDomain, key)
		if isPortfolioPage {
			url += "&is_portfolio_page=true"
		}
		return fmt.Sprintf(`<img src=%q`, url)
	})
}

// baseTemplate loads the PDF template file governing the user's tenant
// from the media bucket. Category defaults to story.
func (s *DownloadService) baseTemplate(ctx context.Context, category model.PortfolioCategory, userID uuid.UUID) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", translateRepoErr(err)
	}

	if category == "" {
		category = model.CategoryStory
	}
	tpl, err := s.templates.Resolve(ctx, user.TenantUUID, model.TemplatePDF, category)
	if err != nil {
		return "", err
	}

	data, err := s.store.Download(ctx, s.buckets.Media, templateBlobPrefix+tpl.FileName())
	if err != nil {
		return "", fmt.Errorf("%w: template file %s", ErrTemplateNotFound, tpl.FileName())
	}
	return string(data), nil
}

// AttachmentName returns the bare file name used for the attachment
// disposition of a raw download.
func AttachmentName(key string) string {
	key = strings.TrimSuffix(key, "/")
	_, name := path.Split(key)
	return name
}
