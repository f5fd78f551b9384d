// Package converter calls the stateless HTML conversion services. Every
// endpoint is a GET returning raw document bytes on 200; anything else is
// a terminal failure once the retry budget is spent.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"impact-service/pkg/config"
	"impact-service/prometheus"
)

// ErrBadStatus is returned when the gateway answers with a non-200 status
var ErrBadStatus = errors.New("converter returned non-200 status")

// Client is the format converter gateway
type Client interface {
	HTMLToPDF(ctx context.Context, sourceURL string) ([]byte, error)
	HTMLToPPT(ctx context.Context, pathName, htmlName, templateFile string) ([]byte, error)
	HTMLToDOC(ctx context.Context, pathName, htmlName string) ([]byte, error)
}

// RetryPolicy controls how many times a converter call is attempted and
// the pause between attempts. Attempts of 1 reproduces the upstream
// all-or-nothing behavior.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// HTTPClient implements Client over HTTP with explicit timeouts
type HTTPClient struct {
	pdfDomain string
	pptDomain string
	docDomain string
	retry     RetryPolicy
	client    *http.Client
}

// NewHTTPClient builds a converter client from configuration
func NewHTTPClient(cfg *config.ConverterConfig) *HTTPClient {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPClient{
		pdfDomain: cfg.PDFDomain,
		pptDomain: cfg.PPTDomain,
		docDomain: cfg.DOCDomain,
		retry:     RetryPolicy{Attempts: attempts, Backoff: cfg.RetryBackoff},
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// HTMLToPDF renders the document behind sourceURL to PDF
func (c *HTTPClient) HTMLToPDF(ctx context.Context, sourceURL string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/api/convert-html-to-pdf?url=%s", c.pdfDomain, url.QueryEscape(sourceURL))
	return c.get(ctx, "PDF", endpoint)
}

// HTMLToPPT renders a stored HTML document to PPTX using a base template
func (c *HTTPClient) HTMLToPPT(ctx context.Context, pathName, htmlName, templateFile string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s&path_name=%s&html_name=%s&template_file=%s",
		c.pptDomain, url.QueryEscape(pathName), url.QueryEscape(htmlName), url.QueryEscape(templateFile))
	return c.get(ctx, "PPT", endpoint)
}

// HTMLToDOC renders a stored HTML document to DOCX
func (c *HTTPClient) HTMLToDOC(ctx context.Context, pathName, htmlName string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s&path_name=%s&html_name=%s",
		c.docDomain, url.QueryEscape(pathName), url.QueryEscape(htmlName))
	return c.get(ctx, "DOC", endpoint)
}

func (c *HTTPClient) get(ctx context.Context, format, endpoint string) ([]byte, error) {
	start := time.Now()
	defer func() {
		prometheus.ConversionDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt < c.retry.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retry.Backoff):
			}
		}

		data, err := c.doOnce(ctx, endpoint)
		if err == nil {
			prometheus.ConversionCounter.WithLabelValues(format, "success").Inc()
			return data, nil
		}
		lastErr = err
	}
	prometheus.ConversionCounter.WithLabelValues(format, "failure").Inc()
	return nil, lastErr
}

func (c *HTTPClient) doOnce(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build converter request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("converter request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read converter response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d: %s", ErrBadStatus, resp.StatusCode, string(body))
	}
	return body, nil
}
