package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchable_gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchable_gallery_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchable_gallery_db_connection_errors_total",
			Help: "Total number of requests rejected because no database connection was usable",
		},
	)
)

// Catalog metrics
var (
	CatalogListItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_catalog_list_items_total",
			Help: "Total number of item listings by join type (none, and, or) and status",
		},
		[]string{"join", "status"},
	)

	CatalogResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchable_gallery_catalog_result_items",
			Help:    "Number of items returned per listing",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"join"},
	)

	CatalogFilterTags = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "searchable_gallery_catalog_filter_tags",
			Help:    "Number of distinct tag names per filtered listing",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	CatalogItemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_items_total",
			Help: "Number of cataloged items",
		},
	)

	CatalogTagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_tags_total",
			Help: "Number of known tags",
		},
	)

	CatalogAssociationsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_item_tags_total",
			Help: "Number of item/tag associations",
		},
	)

	CatalogUntaggedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_untagged_items",
			Help: "Number of items without any tag",
		},
	)
)

// Import and thumbnail metrics
var (
	ImportFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_import_files_total",
			Help: "Total number of files seen by the importer by status (imported, skipped, failed)",
		},
		[]string{"status"},
	)

	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "searchable_gallery_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	BlobReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_blob_reads_total",
			Help: "Total number of image and thumbnail reads by kind and status",
		},
		[]string{"kind", "status"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchable_gallery_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations by volume and operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts after stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchable_gallery_filesystem_retry_duration_seconds",
			Help:    "Total time spent in filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchable_gallery_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors",
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_memory_paused",
			Help: "1 while import workers are paused for memory pressure",
		},
	)

	MemoryPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchable_gallery_memory_pauses_total",
			Help: "Total number of times import workers were paused for memory pressure",
		},
	)
)

// App info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "searchable_gallery_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
