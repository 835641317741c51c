package config

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Device  DeviceConfig  `yaml:"device" mapstructure:"device"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Map     MapConfig     `yaml:"map" mapstructure:"map"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CatalogConfig selects the directory data source.
type CatalogConfig struct {
	// Source is one of json, csv, xlsx, shapefile, sqlite or postgres.
	Source string `yaml:"source" mapstructure:"source"`
	// Location is a file path, an http(s) or ftp URL, or a SQLite DSN.
	Location         string `yaml:"location" mapstructure:"location"`
	DatabaseURL      string `yaml:"database_url" mapstructure:"database_url"`
	Table            string `yaml:"table" mapstructure:"table"`
	Sheet            string `yaml:"sheet" mapstructure:"sheet"`
	PruneUnlocatable bool   `yaml:"prune_unlocatable" mapstructure:"prune_unlocatable"`
}

// GeocodeConfig configures free-text and reverse geocoding.
type GeocodeConfig struct {
	NominatimURL    string  `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	UserAgent       string  `yaml:"user_agent" mapstructure:"user_agent"`
	GoogleAPIKey    string  `yaml:"google_api_key" mapstructure:"google_api_key"`
	RateLimit       float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries      int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// DeviceConfig configures "use my location".
type DeviceConfig struct {
	// Provider is one of ip, static or disabled.
	Provider     string  `yaml:"provider" mapstructure:"provider"`
	IPURL        string  `yaml:"ip_url" mapstructure:"ip_url"`
	Latitude     float64 `yaml:"latitude" mapstructure:"latitude"`
	Longitude    float64 `yaml:"longitude" mapstructure:"longitude"`
	HighAccuracy bool    `yaml:"high_accuracy" mapstructure:"high_accuracy"`
	TimeoutMS    int     `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	MaxAgeMS     int     `yaml:"max_age_ms" mapstructure:"max_age_ms"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Radius string `yaml:"radius" mapstructure:"radius"`
	Sort   string `yaml:"sort" mapstructure:"sort"`
}

// MapConfig configures the map view.
type MapConfig struct {
	StylePath string `yaml:"style_path" mapstructure:"style_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOCATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.source", "json")
	v.SetDefault("catalog.location", "databases/churchesList.json")
	v.SetDefault("catalog.table", "directory_entities")
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("catalog.sheet", "")
	v.SetDefault("catalog.prune_unlocatable", false)
	v.SetDefault("geocode.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "directory-locator/1.0")
	v.SetDefault("geocode.google_api_key", "")
	v.SetDefault("geocode.rate_limit", 1.0)
	v.SetDefault("geocode.cache_ttl_minutes", 60)
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.max_retries", 3)
	v.SetDefault("device.provider", "ip")
	v.SetDefault("device.ip_url", "http://ip-api.com/json/?fields=status,message,lat,lon")
	v.SetDefault("device.latitude", 0.0)
	v.SetDefault("device.longitude", 0.0)
	v.SetDefault("device.high_accuracy", true)
	v.SetDefault("device.timeout_ms", 20000)
	v.SetDefault("device.max_age_ms", 0)
	v.SetDefault("search.radius", "any")
	v.SetDefault("search.sort", "distance")
	v.SetDefault("map.style_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var catalogSources = map[string]bool{
	"json": true, "csv": true, "xlsx": true, "shapefile": true, "sqlite": true, "postgres": true,
}

// Validate checks the settings a command mode depends on. Modes: search,
// shell, locate, catalog.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "search", "shell":
		errs = append(errs, c.validateCatalog()...)
		errs = append(errs, c.validateGeocode()...)
		errs = append(errs, c.validateDevice()...)
	case "locate":
		errs = append(errs, c.validateGeocode()...)
		errs = append(errs, c.validateDevice()...)
	case "catalog":
		errs = append(errs, c.validateCatalog()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateCatalog() []string {
	var errs []string
	src := strings.ToLower(c.Catalog.Source)
	if !catalogSources[src] {
		errs = append(errs, "catalog.source must be one of json, csv, xlsx, shapefile, sqlite, postgres")
	}
	switch src {
	case "postgres":
		if c.Catalog.DatabaseURL == "" {
			errs = append(errs, "catalog.database_url is required for postgres")
		}
	default:
		if c.Catalog.Location == "" {
			errs = append(errs, "catalog.location is required")
		}
	}
	return errs
}

func (c *Config) validateGeocode() []string {
	var errs []string
	if c.Geocode.NominatimURL == "" {
		errs = append(errs, "geocode.nominatim_url is required")
	}
	if c.Geocode.RateLimit <= 0 {
		errs = append(errs, "geocode.rate_limit must be > 0")
	}
	if c.Geocode.MaxRetries < 1 {
		errs = append(errs, "geocode.max_retries must be >= 1")
	}
	if c.Geocode.TimeoutSecs < 0 || c.Geocode.CacheTTLMinutes < 0 {
		errs = append(errs, "geocode timeouts and ttl must be >= 0")
	}
	return errs
}

func (c *Config) validateDevice() []string {
	var errs []string
	switch strings.ToLower(c.Device.Provider) {
	case "ip", "disabled":
	case "static":
		lat, lon := c.Device.Latitude, c.Device.Longitude
		if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			errs = append(errs, "device.latitude/longitude out of range")
		}
	default:
		errs = append(errs, "device.provider must be one of ip, static, disabled")
	}
	if c.Device.TimeoutMS < 0 {
		errs = append(errs, "device.timeout_ms must be >= 0")
	}
	if c.Device.MaxAgeMS < 0 {
		errs = append(errs, "device.max_age_ms must be >= 0")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
