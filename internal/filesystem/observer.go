package filesystem

// Observer receives timing and retry events for catalog file reads. The
// metrics package implements it; SetObserver wires it in at startup.
//
// volume is the label VolumeResolver assigns to a path: "images",
// "thumbnails", "database" or "unknown". op is "stat", "open" or "read".
type Observer interface {
	ObserveOperation(volume, op string, durationSeconds float64, err error)

	// Retry events fire only for stale file handles; other errors fail fast.
	ObserveRetryAttempt(op, volume string)
	ObserveRetrySuccess(op, volume string)
	ObserveRetryFailure(op, volume string)
	ObserveRetryDuration(op, volume string, durationSeconds float64)
	ObserveStaleError(op, volume string)
}

var defaultObserver Observer

// SetObserver installs the process-wide observer. A nil observer disables
// recording.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}
