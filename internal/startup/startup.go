package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"searchable-gallery/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

const rule = "------------------------------------------------------------"

// section logs a titled divider. Startup output is grouped into sections so
// container logs read top to bottom.
func section(title string, args ...interface{}) {
	logging.Info("")
	logging.Info(rule)
	logging.Info(title, args...)
	logging.Info(rule)
}

// LoadConfig loads configuration, applies the logging settings, prints the
// startup banner and prepares the database and thumbnail directories.
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	logging.SetLevel(cfg.LogLevel)
	if err := logging.Configure(cfg.LoggingOptions()); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	printBanner()
	logSystemInfo()
	logConfig(cfg)

	section("DIRECTORY SETUP")
	if err := prepareDir(cfg.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory %s is unusable: %w", cfg.DatabaseDir, err)
	}
	logging.Info("  [OK] database directory is writable")

	cfg.ThumbnailsEnabled = setupOptionalDir(cfg.ThumbnailDir, "thumbnails")

	logging.Info("  Thumbnails: %s", enabledString(cfg.ThumbnailsEnabled))
	logging.Info("  Metrics:    %s", enabledString(cfg.MetricsEnabled))

	return cfg, nil
}

func logConfig(cfg *Config) {
	section("CONFIGURATION")
	entries := []struct {
		key   string
		value interface{}
	}{
		{"DATABASE_DIR", cfg.DatabaseDir},
		{"DATABASE_DRIVER", cfg.DatabaseDriver},
		{"THUMBNAIL_DIR", cfg.ThumbnailDir},
		{"IMAGE_DIR", cfg.ImageDir},
		{"PORT", cfg.Port},
		{"METRICS_PORT", cfg.MetricsPort},
		{"METRICS_ENABLED", cfg.MetricsEnabled},
		{"STATS_INTERVAL", cfg.StatsInterval},
		{"REQUEST_TIMEOUT", cfg.RequestTimeout},
		{"LOG_STATIC_FILES", cfg.LogStaticFiles},
		{"LOG_HEALTH_CHECKS", cfg.LogHealthChecks},
		{"LOG_LEVEL", cfg.LogLevel},
		{"LOG_FORMAT", cfg.LogFormat},
	}
	if cfg.LogFile != "" {
		entries = append(entries, struct {
			key   string
			value interface{}
		}{"LOG_FILE", cfg.LogFile})
	}
	for _, e := range entries {
		logging.Info("  %-18s %v", e.key+":", e.value)
	}
}

// prepareDir creates path if needed and checks that it is a writable
// directory.
func prepareDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	probe := filepath.Join(path, ".write-test")
	if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		logging.Warn("failed to remove write test file %s: %v", probe, err)
	}
	return nil
}

// setupOptionalDir prepares a directory whose feature is disabled, rather
// than failing startup, when it is unusable.
func setupOptionalDir(path, name string) bool {
	if err := prepareDir(path); err != nil {
		logging.Warn("  %s directory %s: %v; %s disabled", name, path, err, name)
		return false
	}
	logging.Debug("  [OK] %s directory ready: %s", name, path)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(driver string, duration time.Duration) {
	section("DATABASE")
	logging.Info("  [OK] opened in %v (driver: %s)", duration, driver)
}

// LogCatalogStats logs catalog counts at startup
func LogCatalogStats(items, tags, associations int) {
	logging.Info("  Catalog: %d items, %d tags, %d associations", items, tags, associations)
	if items == 0 {
		logging.Warn("  Catalog is empty; import images with: galleryctl import <dir> --tag <name>")
	}
}

// GetRoutes extracts all registered routes from a mux.Router. Routes
// registered without a method restriction are reported with method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, m := range methods {
			routes = append(routes, RouteInfo{Method: m, Path: path, Name: route.GetName()})
		}
		return nil
	})
	return routes, err
}

// LogHTTPRoutes logs the request logging settings and, at debug level, the
// route table grouped by path prefix.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}
		sort.SliceStable(routes, func(i, j int) bool {
			return getRouteGroup(routes[i].Path) < getRouteGroup(routes[j].Path)
		})

		logging.Debug("  Registered routes (%d total):", len(routes))
		group := "\x00"
		for _, route := range routes {
			if g := getRouteGroup(route.Path); g != group {
				group = g
				if g == "" {
					g = "root"
				}
				logging.Debug("  [%s]", g)
			}
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}

	logging.Info("  Static file logging:  %s", onOff(logStaticFiles, "LOG_STATIC_FILES"))
	logging.Info("  Health check logging: %s", onOff(logHealthChecks, "LOG_HEALTH_CHECKS"))
}

func onOff(on bool, key string) string {
	if on {
		return "ON"
	}
	return "OFF (set " + key + "=true to enable)"
}

// getRouteGroup returns the first path segment, or "api/<resource>" for API
// routes.
func getRouteGroup(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if parts[0] == "api" && len(parts) > 1 {
		return "api/" + parts[1]
	}
	return parts[0]
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs the listening endpoints.
func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED in %v", config.StartupDuration)
	logging.Info("  API:      http://localhost:%s/api/items", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:  http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:  DISABLED")
	}
	logging.Info("  Press Ctrl+C to stop the server")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	section("SHUTDOWN INITIATED (received %s)", signal)
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	fmt.Println(rule)
	fmt.Println("  searchable-gallery")
	fmt.Println("  tag search over an image catalog")
	fmt.Println(rule)
	logging.Info("  Version %s (commit %s, built %s)", Version, Commit, BuildTime)
	logging.Info("  Started %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go %s on %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs: %d, GOMAXPROCS: %d", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir: %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:    %s", hostname)
		}
	}
}
