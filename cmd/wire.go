package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-locator/internal/catalog"
	"github.com/sells-group/directory-locator/internal/config"
	"github.com/sells-group/directory-locator/internal/device"
	"github.com/sells-group/directory-locator/internal/fetcher"
	"github.com/sells-group/directory-locator/internal/geo"
	"github.com/sells-group/directory-locator/internal/locate"
	"github.com/sells-group/directory-locator/internal/resilience"
	"github.com/sells-group/directory-locator/internal/search"
	"github.com/sells-group/directory-locator/pkg/geocode"
)

// initCatalog builds the catalog for the configured source. The returned
// cleanup releases database connections.
func initCatalog(ctx context.Context, c config.CatalogConfig) (*catalog.Catalog, func(), error) {
	noop := func() {}
	dl := fetcher.NewSchemeFetcher(
		fetcher.NewHTTPFetcher(fetcher.HTTPOptions{UserAgent: cfg.Geocode.UserAgent}),
		fetcher.NewFTPFetcher(fetcher.FTPOptions{}),
	)

	var src catalog.Source
	switch strings.ToLower(c.Source) {
	case "json":
		src = &catalog.JSONSource{Location: c.Location, Fetcher: dl}
	case "csv":
		src = &catalog.CSVSource{Location: c.Location, Fetcher: dl}
	case "xlsx":
		src = &catalog.XLSXSource{Path: c.Location, Options: fetcher.XLSXOptions{SheetName: c.Sheet}}
	case "shapefile":
		src = &catalog.ShapefileSource{Path: c.Location}
	case "sqlite":
		src = &catalog.SQLiteSource{DSN: c.Location, Table: c.Table}
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, noop, eris.Wrap(err, "catalog: create connection pool")
		}
		src = &catalog.PostgresSource{Pool: pool, Table: c.Table}
		return catalog.New(src, catalog.WithPruneUnlocatable(c.PruneUnlocatable)), pool.Close, nil
	default:
		return nil, noop, eris.Errorf("unsupported catalog source: %s", c.Source)
	}

	zap.L().Debug("catalog source configured", zap.String("source", c.Source), zap.String("location", c.Location))
	return catalog.New(src, catalog.WithPruneUnlocatable(c.PruneUnlocatable)), noop, nil
}

// initGeocoders returns the forward geocoding cascade and the reverse geocoder.
func initGeocoders(c config.GeocodeConfig) (geocode.Geocoder, geocode.Reverser) {
	hc := &http.Client{Timeout: time.Duration(c.TimeoutSecs) * time.Second}
	retry := resilience.DefaultPolicy("nominatim")
	retry.MaxAttempts = c.MaxRetries

	nom := geocode.NewNominatim(
		geocode.WithBaseURL(c.NominatimURL),
		geocode.WithUserAgent(c.UserAgent),
		geocode.WithHTTPClient(hc),
		geocode.WithRateLimit(c.RateLimit),
		geocode.WithRetryPolicy(retry),
	)

	providers := []geocode.Geocoder{nom}
	if c.GoogleAPIKey != "" {
		providers = append(providers, geocode.NewGoogle(c.GoogleAPIKey, hc))
	}
	return geocode.NewCascade(time.Duration(c.CacheTTLMinutes)*time.Minute, providers...), nom
}

func deviceOptions(c config.DeviceConfig) device.Options {
	return device.Options{
		HighAccuracy: c.HighAccuracy,
		Timeout:      time.Duration(c.TimeoutMS) * time.Millisecond,
		MaxAge:       time.Duration(c.MaxAgeMS) * time.Millisecond,
	}
}

func initLocator(c config.DeviceConfig) *device.Locator {
	var p device.Provider
	switch strings.ToLower(c.Provider) {
	case "static":
		p = device.StaticProvider{Point: geo.Coordinate{Lat: c.Latitude, Lon: c.Longitude}}
	case "disabled":
		p = device.DisabledProvider{}
	default:
		p = device.NewIPProvider(c.IPURL, nil)
	}
	return device.NewLocator(p, deviceOptions(c))
}

// initSession wires a search session from the loaded configuration.
func initSession(ctx context.Context) (*search.Session, func(), error) {
	cat, cleanup, err := initCatalog(ctx, cfg.Catalog)
	if err != nil {
		return nil, cleanup, err
	}
	g, rev := initGeocoders(cfg.Geocode)
	return search.NewSession(cat, locate.NewResolver(g, cat), initLocator(cfg.Device), rev), cleanup, nil
}

// queryDefaults parses the configured radius and sort mode.
func queryDefaults(c config.SearchConfig) (search.Query, error) {
	radius, err := search.ParseRadius(c.Radius)
	if err != nil {
		return search.Query{}, err
	}
	mode, err := search.ParseSortMode(c.Sort)
	if err != nil {
		return search.Query{}, err
	}
	return search.Query{RadiusMiles: radius, Sort: mode}, nil
}
