package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Report materialization requests by requested format
	MaterializeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_materialize_total",
			Help: "Total number of report materialization requests by format",
		},
		[]string{"format"},
	)

	// Cache hits/misses against the blob store by format
	MaterializeCacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_materialize_cache_total",
			Help: "Blob cache hits and misses during materialization",
		},
		[]string{"format", "result"}, // result is "hit" or "miss"
	)

	// Converter gateway calls by format and outcome
	ConversionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_conversions_total",
			Help: "Total number of converter gateway calls",
		},
		[]string{"format", "outcome"}, // outcome is "success" or "failure"
	)

	// Portfolio operation counter
	PortfolioOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_portfolio_operations_total",
			Help: "Total number of portfolio operations",
		},
		[]string{"operation"}, // "create", "list", "download", "delete", etc.
	)

	// Template operation counter
	TemplateOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_template_operations_total",
			Help: "Total number of report base template operations",
		},
		[]string{"operation"},
	)

	// Token refresh counter with outcome ("refreshed", "skipped", "failed")
	TokenRefreshCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_token_refresh_total",
			Help: "Total number of data connection token refreshes",
		},
		[]string{"outcome"},
	)

	// Donation counter by mode
	DonationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_donations_total",
			Help: "Total number of donation checkout sessions created",
		},
		[]string{"mode"},
	)

	// Webhook events by type
	WebhookEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_webhook_events_total",
			Help: "Total number of payment webhook events received",
		},
		[]string{"type"},
	)

	// News feed cache counter
	NewsCacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_news_cache_total",
			Help: "News feed cache hits and misses",
		},
		[]string{"result"},
	)

	// Download view counter by serving mode
	DownloadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_downloads_total",
			Help: "Blob downloads served, by serving mode",
		},
		[]string{"mode"}, // "file", "image", "html"
	)

	// Error counters
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_errors_total",
			Help: "Total number of service errors",
		},
		[]string{"type"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "impact_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "impact_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)

	// Converter call duration by format
	ConversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "impact_conversion_duration_seconds",
			Help:    "Duration of converter gateway calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"format"},
	)

	// Blob store operation duration
	BlobOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "impact_blob_operation_duration_seconds",
			Help:    "Duration of blob store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "exists", "download", "upload", "list", "delete"
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "impact_info",
			Help: "Information about the impact report service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(MaterializeCounter)
	prometheus.MustRegister(MaterializeCacheCounter)
	prometheus.MustRegister(ConversionCounter)
	prometheus.MustRegister(PortfolioOperationCounter)
	prometheus.MustRegister(TemplateOperationCounter)
	prometheus.MustRegister(TokenRefreshCounter)
	prometheus.MustRegister(DonationCounter)
	prometheus.MustRegister(WebhookEventCounter)
	prometheus.MustRegister(NewsCacheCounter)
	prometheus.MustRegister(DownloadCounter)
	prometheus.MustRegister(ErrorCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(ConversionDuration)
	prometheus.MustRegister(BlobOperationDuration)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordDownload increments the download counter for the serving mode
func RecordDownload(mode string) {
	DownloadCounter.With(prometheus.Labels{"mode": mode}).Inc()
}

// RecordError increments the error counter for the given type
func RecordError(errType string) {
	ErrorCounter.With(prometheus.Labels{"type": errType}).Inc()
}

// RecordPortfolioOperation increments the portfolio operation counter
func RecordPortfolioOperation(operation string) {
	PortfolioOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordTemplateOperation increments the template operation counter
func RecordTemplateOperation(operation string) {
	TemplateOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// TrackBlobOperation measures blob store operation durations
func TrackBlobOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		BlobOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			return err
		}
	}
}
