package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"searchable-gallery/internal/logging"
)

// Configuration keys. Each is read from the environment variable of the
// same name in upper case, or from the optional YAML file named by
// CONFIG_FILE.
const (
	KeyDatabaseDir     = "database_dir"
	KeyDatabaseDriver  = "database_driver"
	KeyThumbnailDir    = "thumbnail_dir"
	KeyImageDir        = "image_dir"
	KeyPort            = "port"
	KeyMetricsPort     = "metrics_port"
	KeyMetricsEnabled  = "metrics_enabled"
	KeyStatsInterval   = "stats_interval"
	KeyRequestTimeout  = "request_timeout"
	KeyLogStaticFiles  = "log_static_files"
	KeyLogHealthChecks = "log_health_checks"
	KeyLogLevel        = "log_level"
	KeyDebug           = "debug"
	KeyLogFormat       = "log_format"
	KeyLogFile         = "log_file"
)

// envFiles are loaded, when present, before the environment is read. Values
// already set in the process environment win.
var envFiles = []string{".env", ".env.local"}

// Config holds all application configuration
type Config struct {
	DatabaseDir     string
	DatabaseDriver  string
	ThumbnailDir    string
	ImageDir        string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StatsInterval   time.Duration
	RequestTimeout  time.Duration
	LogStaticFiles  bool
	LogHealthChecks bool
	LogLevel        logging.LogLevel
	LogFormat       string
	LogFile         string

	// Derived paths
	DatabasePath string

	// ThumbnailsEnabled is false when the thumbnail directory is not writable.
	ThumbnailsEnabled bool
}

// LoggingOptions returns the logging backend options implied by the config.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Format:     c.LogFormat,
		File:       c.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

func newViper() (*viper.Viper, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetDefault(KeyDatabaseDir, "/database")
	v.SetDefault(KeyDatabaseDriver, "sqlite3")
	v.SetDefault(KeyThumbnailDir, "/data/thumbnails")
	v.SetDefault(KeyImageDir, "")
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyMetricsPort, "9090")
	v.SetDefault(KeyMetricsEnabled, "true")
	v.SetDefault(KeyStatsInterval, "1m")
	v.SetDefault(KeyRequestTimeout, "30s")
	v.SetDefault(KeyLogStaticFiles, "false")
	v.SetDefault(KeyLogHealthChecks, "true")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDebug, "")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, "")
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	return v, nil
}

// Load reads configuration without touching the filesystem or logging a
// banner. The CLI uses it; the server uses LoadConfig.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseDir:     v.GetString(KeyDatabaseDir),
		DatabaseDriver:  strings.TrimSpace(v.GetString(KeyDatabaseDriver)),
		ThumbnailDir:    v.GetString(KeyThumbnailDir),
		ImageDir:        strings.TrimSpace(v.GetString(KeyImageDir)),
		Port:            v.GetString(KeyPort),
		MetricsPort:     v.GetString(KeyMetricsPort),
		MetricsEnabled:  getBool(v, KeyMetricsEnabled, true),
		StatsInterval:   getDuration(v, KeyStatsInterval, time.Minute),
		RequestTimeout:  getDuration(v, KeyRequestTimeout, 30*time.Second),
		LogStaticFiles:  getBool(v, KeyLogStaticFiles, false),
		LogHealthChecks: getBool(v, KeyLogHealthChecks, true),
		LogLevel:        logging.ParseLevel(v.GetString(KeyDebug), v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		LogFile:         v.GetString(KeyLogFile),
	}

	switch cfg.DatabaseDriver {
	case "sqlite3", "sqlite":
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER must be sqlite3 or sqlite, got %q", cfg.DatabaseDriver)
	}

	if cfg.DatabaseDir, err = filepath.Abs(cfg.DatabaseDir); err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	if cfg.ThumbnailDir, err = filepath.Abs(cfg.ThumbnailDir); err != nil {
		return nil, fmt.Errorf("failed to resolve thumbnail directory path: %w", err)
	}
	if cfg.ImageDir != "" {
		if cfg.ImageDir, err = filepath.Abs(cfg.ImageDir); err != nil {
			return nil, fmt.Errorf("failed to resolve image directory path: %w", err)
		}
	}
	cfg.DatabasePath = DatabasePathFor(cfg.DatabaseDir)

	return cfg, nil
}

// Volumes maps the filesystem metric volume labels to their directories.
// "images" is present only when IMAGE_DIR is set.
func (c *Config) Volumes() map[string]string {
	volumes := map[string]string{
		"thumbnails": c.ThumbnailDir,
		"database":   c.DatabaseDir,
	}
	if c.ImageDir != "" {
		volumes["images"] = c.ImageDir
	}
	return volumes
}

// DatabasePathFor returns the catalog file inside dir.
func DatabasePathFor(dir string) string {
	return filepath.Join(dir, "gallery.db")
}

func getBool(v *viper.Viper, key string, defaultValue bool) bool {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", strings.ToUpper(key), value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getDuration(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid duration for %s: %q, using default: %v", strings.ToUpper(key), value, defaultValue)
		return defaultValue
	}
	return parsed
}
