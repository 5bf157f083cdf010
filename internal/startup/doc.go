// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [Load] reads optional .env and .env.local files (github.com/joho/godotenv),
// then resolves every key through github.com/spf13/viper: process
// environment first, then the YAML file named by CONFIG_FILE, then defaults.
//
//   - DATABASE_DIR: directory holding gallery.db (default: /database)
//   - DATABASE_DRIVER: sqlite3 (cgo, default) or sqlite (pure Go)
//   - THUMBNAIL_DIR: generated thumbnails (default: /data/thumbnails)
//   - IMAGE_DIR: optional root of the catalogued images, labels read metrics
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - STATS_INTERVAL: catalog gauge refresh interval (default: 1m)
//   - REQUEST_TIMEOUT: per-request deadline for catalog queries (default: 30s)
//   - LOG_LEVEL / DEBUG: logging level (default: info)
//   - LOG_FORMAT: console or json (default: console)
//   - LOG_FILE: optional rotated log file
//   - LOG_STATIC_FILES, LOG_HEALTH_CHECKS: request logging toggles
//
// [LoadConfig] is the server variant: it also configures logging, prints the
// banner and prepares the database and thumbnail directories.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed through
// [GetBuildInfo].
//
// # Lifecycle Logging
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogDatabaseInit(config.DatabaseDriver, time.Since(dbStart))
//	startup.LogServerStarted(startup.ServerConfig{Port: config.Port})
//	startup.LogShutdownInitiated("SIGTERM")
//	startup.LogShutdownComplete()
package startup
