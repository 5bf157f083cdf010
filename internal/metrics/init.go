package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, join := range []string{"none", "and", "or"} {
		CatalogListItemsTotal.WithLabelValues(join, "success")
		CatalogListItemsTotal.WithLabelValues(join, "error")
		CatalogResultSize.WithLabelValues(join)
	}

	volumes := []string{"images", "thumbnails", "database", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"read", "stat", "write"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
		for _, op := range []string{"stat", "open"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, status := range []string{"imported", "skipped", "failed"} {
		ImportFilesTotal.WithLabelValues(status)
	}
	for _, status := range []string{"success", "error"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
		for _, kind := range []string{"image", "thumbnail"} {
			BlobReadsTotal.WithLabelValues(kind, status)
		}
	}
}
