package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Catalog.Source)
	assert.Equal(t, "databases/churchesList.json", cfg.Catalog.Location)
	assert.Equal(t, "directory_entities", cfg.Catalog.Table)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocode.NominatimURL)
	assert.InDelta(t, 1.0, cfg.Geocode.RateLimit, 0.001)
	assert.Equal(t, 3, cfg.Geocode.MaxRetries)
	assert.Equal(t, "ip", cfg.Device.Provider)
	assert.True(t, cfg.Device.HighAccuracy)
	assert.Equal(t, 20000, cfg.Device.TimeoutMS)
	assert.Equal(t, 0, cfg.Device.MaxAgeMS)
	assert.Equal(t, "any", cfg.Search.Radius)
	assert.Equal(t, "distance", cfg.Search.Sort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate("search"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
catalog:
  source: sqlite
  location: churches.db
device:
  provider: static
  latitude: 40.27
  longitude: -76.88
search:
  radius: "25"
  sort: name
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Catalog.Source)
	assert.Equal(t, "churches.db", cfg.Catalog.Location)
	assert.Equal(t, "static", cfg.Device.Provider)
	assert.InDelta(t, 40.27, cfg.Device.Latitude, 1e-9)
	assert.Equal(t, "25", cfg.Search.Radius)
	assert.Equal(t, "name", cfg.Search.Sort)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 20000, cfg.Device.TimeoutMS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
catalog:
  source: csv
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("LOCATOR_CATALOG_SOURCE", "postgres")
	t.Setenv("LOCATOR_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Catalog.Source)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LOCATOR_DEVICE_TIMEOUT_MS", "5000")
	t.Setenv("LOCATOR_GEOCODE_GOOGLE_API_KEY", "gkey")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Device.TimeoutMS)
	assert.Equal(t, "gkey", cfg.Geocode.GoogleAPIKey)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("catalog: [oops"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Catalog.Source = "json"
	cfg.Catalog.Location = "churches.json"
	cfg.Geocode.NominatimURL = "https://nominatim.openstreetmap.org"
	cfg.Geocode.RateLimit = 1
	cfg.Geocode.MaxRetries = 3
	cfg.Device.Provider = "ip"
	cfg.Device.TimeoutMS = 20000
	return cfg
}

func TestValidate_AllModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"search", "shell", "locate", "catalog"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidateCatalog(t *testing.T) {
	cfg := validDefaults()
	cfg.Catalog.Source = "mongo"
	cfg.Catalog.Location = ""

	err := cfg.Validate("catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.source must be one of")
	assert.Contains(t, err.Error(), "catalog.location is required")

	cfg.Catalog.Source = "postgres"
	err = cfg.Validate("catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.database_url is required for postgres")

	cfg.Catalog.DatabaseURL = "postgres://localhost/directory"
	assert.NoError(t, cfg.Validate("catalog"))
}

func TestValidateDevice(t *testing.T) {
	cfg := validDefaults()
	cfg.Device.Provider = "gps"
	cfg.Device.MaxAgeMS = -1

	err := cfg.Validate("locate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device.provider must be one of")
	assert.Contains(t, err.Error(), "device.max_age_ms must be >= 0")

	cfg = validDefaults()
	cfg.Device.Provider = "static"
	cfg.Device.Latitude = 91
	err = cfg.Validate("locate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestValidateGeocode(t *testing.T) {
	cfg := validDefaults()
	cfg.Geocode.RateLimit = 0
	cfg.Geocode.MaxRetries = 0

	err := cfg.Validate("search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geocode.rate_limit must be > 0")
	assert.Contains(t, err.Error(), "geocode.max_retries must be >= 1")

	// Catalog mode does not geocode.
	assert.NoError(t, cfg.Validate("catalog"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
