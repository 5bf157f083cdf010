package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"searchable-gallery/internal/catalog"
	"searchable-gallery/internal/database"
	"searchable-gallery/internal/filesystem"
	"searchable-gallery/internal/handlers"
	"searchable-gallery/internal/logging"
	"searchable-gallery/internal/media"
	"searchable-gallery/internal/memory"
	"searchable-gallery/internal/metrics"
	"searchable-gallery/internal/middleware"
	"searchable-gallery/internal/startup"

	"github.com/gorilla/mux"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	defer func() { _ = logging.Sync() }()

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(config.Volumes()))
	metrics.InitializeMetrics()
	info := startup.GetBuildInfo()
	metrics.AppInfo.WithLabelValues(info.Version, info.Commit, info.GoVersion).Set(1)

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath, &database.Options{Driver: config.DatabaseDriver})
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(db.Driver(), time.Since(dbStart))

	svc := catalog.NewService(db)
	if stats, err := svc.Stats(context.Background()); err != nil {
		logging.Warn("Failed to read catalog stats: %v", err)
	} else {
		startup.LogCatalogStats(stats.TotalItems, stats.TotalTags, stats.TotalAssociations)
	}

	collector := metrics.NewCollector(svc.StatsProvider(), config.StatsInterval)
	collector.Start()

	h := handlers.New(svc, media.NewResolver(config.ThumbnailDir))
	router := setupRouter(h, config)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	srv := newServer(":"+config.Port, middleware.Logger(loggingConfig)(router))

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(":"+config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, db)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	// API routes live on the top-level router so a method mismatch answers
	// 405; a PathPrefix subrouter reports it as 404.
	timeout := middleware.Timeout(config.RequestTimeout)
	api := func(path string, fn http.HandlerFunc, method, name string) {
		r.Handle("/api"+path, timeout(fn)).Methods(method).Name(name)
	}

	// Catalog queries
	api("/items", h.ListItems, http.MethodGet, "listItems")
	api("/items/query", h.QueryItems, http.MethodPost, "queryItems")
	api("/items/{id}", h.GetItem, http.MethodGet, "getItem")
	api("/tags", h.ListTags, http.MethodGet, "listTags")

	// Image bytes
	api("/items/{id}/image", h.GetItemImage, http.MethodGet, "itemImage")
	api("/items/{id}/image-data", h.GetItemImageData, http.MethodGet, "itemImageData")
	api("/thumbnails/{ref}", h.GetThumbnail, http.MethodGet, "thumbnail")

	return r
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

func newMetricsServer(addr string, h *handlers.Handlers) *http.Server {
	routes := http.NewServeMux()
	routes.Handle("/metrics", h.MetricsHandler())
	routes.HandleFunc("/healthz", h.LivenessCheck)
	return &http.Server{
		Addr:              addr,
		Handler:           routes,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, db *database.Database) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	shutdown(srv, metricsSrv, collector, db)
	startup.LogShutdownComplete()
}

// shutdown stops the servers first so in-flight queries finish before the
// database closes.
func shutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, db *database.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Closing database")
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}
}
