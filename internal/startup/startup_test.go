package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchable-gallery/internal/logging"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	// Check that all fields are populated
	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

// clearConfigEnv blanks every configuration variable for the duration of
// the test so the host environment cannot leak in.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_DIR", "DATABASE_DRIVER", "THUMBNAIL_DIR", "IMAGE_DIR", "PORT", "METRICS_PORT",
		"METRICS_ENABLED", "STATS_INTERVAL", "REQUEST_TIMEOUT", "LOG_STATIC_FILES",
		"LOG_HEALTH_CHECKS", "LOG_LEVEL", "DEBUG", "LOG_FORMAT", "LOG_FILE", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/database", cfg.DatabaseDir)
	assert.Equal(t, "/database/gallery.db", cfg.DatabasePath)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, "/data/thumbnails", cfg.ThumbnailDir)
	assert.Empty(t, cfg.ImageDir)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "9090", cfg.MetricsPort)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, time.Minute, cfg.StatsInterval)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.LogStaticFiles)
	assert.True(t, cfg.LogHealthChecks)
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.LogFile)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	t.Setenv("DATABASE_DIR", dir)
	t.Setenv("DATABASE_DRIVER", " sqlite ")
	t.Setenv("PORT", "9000")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("STATS_INTERVAL", "15s")
	t.Setenv("REQUEST_TIMEOUT", "bogus")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DatabaseDir)
	assert.Equal(t, filepath.Join(dir, "gallery.db"), cfg.DatabasePath)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 15*time.Second, cfg.StatsInterval)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout, "invalid duration falls back to default")
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestLoadConfigFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "gallery.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\nthumbnail_dir: /srv/thumbs\nlog_level: warn\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7100", cfg.Port, "environment wins over the config file")
	assert.Equal(t, "/srv/thumbs", cfg.ThumbnailDir)
	assert.Equal(t, logging.LevelWarn, cfg.LogLevel)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{value: "", defaultValue: true, want: true},
		{value: "", defaultValue: false, want: false},
		{value: "true", defaultValue: false, want: true},
		{value: "1", defaultValue: false, want: true},
		{value: "FALSE", defaultValue: true, want: false},
		{value: " 0 ", defaultValue: true, want: false},
		{value: "yes", defaultValue: true, want: true},
		{value: "yes", defaultValue: false, want: false},
	}

	for _, tt := range tests {
		v := viper.New()
		v.Set("flag", tt.value)
		if got := getBool(v, "flag", tt.defaultValue); got != tt.want {
			t.Errorf("getBool(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
		}
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{value: "", want: time.Minute},
		{value: "5s", want: 5 * time.Second},
		{value: "2m30s", want: 150 * time.Second},
		{value: "0s", want: time.Minute},
		{value: "-1s", want: time.Minute},
		{value: "soon", want: time.Minute},
	}

	for _, tt := range tests {
		v := viper.New()
		v.Set("interval", tt.value)
		assert.Equal(t, tt.want, getDuration(v, "interval", time.Minute), "value %q", tt.value)
	}
}

func TestLoggingOptions(t *testing.T) {
	cfg := &Config{LogFormat: "json", LogFile: "/var/log/gallery.log"}
	opts := cfg.LoggingOptions()
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "/var/log/gallery.log", opts.File)
	assert.Positive(t, opts.MaxSizeMB)
}

func TestLoadConfigPreparesDirectories(t *testing.T) {
	clearConfigEnv(t)
	root := t.TempDir()
	t.Setenv("DATABASE_DIR", filepath.Join(root, "db"))
	t.Setenv("THUMBNAIL_DIR", filepath.Join(root, "thumbs"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(root, "db"))
	assert.DirExists(t, filepath.Join(root, "thumbs"))
	assert.True(t, cfg.ThumbnailsEnabled)
	assert.NoFileExists(t, filepath.Join(root, "thumbs", ".write-test"))
}

func TestSetupOptionalDirUnwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	assert.False(t, setupOptionalDir(filepath.Join(file, "child"), "thumbnails"))
}

func TestEnabledString(t *testing.T) {
	assert.Equal(t, "ENABLED", enabledString(true))
	assert.Equal(t, "DISABLED", enabledString(false))
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/api/items", want: "api/items"},
		{path: "/api/items/{id}/image", want: "api/items"},
		{path: "/api/tags", want: "api/tags"},
		{path: "/healthz", want: "healthz"},
		{path: "/", want: ""},
		{path: "/api", want: "api"},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	r := mux.NewRouter()
	r.HandleFunc("/api/tags", noop).Methods(http.MethodGet).Name("listTags")
	r.HandleFunc("/api/items", noop).Methods(http.MethodGet)
	r.HandleFunc("/api/items/query", noop).Methods(http.MethodPost)
	r.HandleFunc("/healthz", noop)

	routes, err := GetRoutes(r)
	require.NoError(t, err)

	var found bool
	for _, route := range routes {
		if route.Path == "/api/tags" {
			found = true
			assert.Equal(t, http.MethodGet, route.Method)
			assert.Equal(t, "listTags", route.Name)
		}
	}
	assert.True(t, found)
	assert.Len(t, routes, 4)

	LogHTTPRoutes(r, false, false)
}

func TestPrepareDir(t *testing.T) {
	root := t.TempDir()

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, prepareDir(nested))
	assert.DirExists(t, nested)

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	require.Error(t, prepareDir(file))
}

func TestOnOff(t *testing.T) {
	assert.Equal(t, "ON", onOff(true, "LOG_STATIC_FILES"))
	assert.Equal(t, "OFF (set LOG_STATIC_FILES=true to enable)", onOff(false, "LOG_STATIC_FILES"))
}

func TestConfigVolumes(t *testing.T) {
	cfg := &Config{DatabaseDir: "/database", ThumbnailDir: "/data/thumbnails"}
	assert.Equal(t, map[string]string{"thumbnails": "/data/thumbnails", "database": "/database"}, cfg.Volumes())

	clearConfigEnv(t)
	t.Setenv("IMAGE_DIR", " /srv/photos ")
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/photos", loaded.ImageDir)
	assert.Equal(t, "/srv/photos", loaded.Volumes()["images"])
}
