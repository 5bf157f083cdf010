// Package metrics provides Prometheus instrumentation for the searchable gallery.
//
// All metrics are prefixed with "searchable_gallery_" to avoid naming
// collisions with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Database Metrics
//
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBConnectionsOpen: Gauge of open database connections
//   - DBConnectionErrors: Counter of requests that found no usable connection
//
// ## Catalog Metrics
//
//   - CatalogListItemsTotal: Counter of item listings by join type and status
//   - CatalogResultSize: Histogram of listing sizes by join type
//   - CatalogFilterTags: Histogram of distinct tag names per filter
//   - CatalogItemsTotal, CatalogTagsTotal, CatalogAssociationsTotal,
//     CatalogUntaggedItems: Gauges refreshed by the Collector
//
// ## Import, Thumbnail and Filesystem Metrics
//
//   - ImportFilesTotal, ThumbnailGenerationsTotal, ThumbnailGenerationDuration
//   - BlobReadsTotal: image and thumbnail reads served to clients
//   - Filesystem*: operation timings and stale-handle retry counters,
//     recorded through the filesystem.Observer implemented here
package metrics
