/*
Package filesystem reads gallery files with retries on stale file handles.

Catalogued images, thumbnails and the database directory may live on network
mounts, where the server can invalidate an open handle. Reads
of original images and thumbnails go through StatWithRetry, OpenWithRetry and
ReadFileWithRetry, which retry ESTALE (errno 116) with exponential backoff and
fail immediately on any other error.

	data, err := filesystem.ReadFileWithRetry(item.FullPath, filesystem.DefaultRetryConfig())

Defaults: 3 retries, 50ms initial backoff, 500ms cap.

Metrics are reported through an Observer installed with SetObserver; the
metrics package provides the Prometheus implementation. Without an observer,
recording is skipped, which keeps tests free of global state.

VolumeResolver labels each path with the volume it belongs to (images,
thumbnails, database) by longest prefix; other paths are "unknown".
*/
package filesystem
