// Package locate turns a location intent (device fix, ZIP code or free text)
// into a single reference coordinate.
package locate

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-locator/internal/catalog"
	"github.com/sells-group/directory-locator/internal/geo"
	"github.com/sells-group/directory-locator/pkg/geocode"
)

// Resolution outcomes other than success.
var (
	// ErrNoLocationProvided is the empty "nothing to search" state, not a failure.
	ErrNoLocationProvided = eris.New("locate: no location provided")
	ErrZipNotFound        = eris.New("locate: zip not found")
	ErrGeocodeNotFound    = eris.New("locate: geocode not found")
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// IsZip reports whether text looks like a US ZIP or ZIP+4 code.
func IsZip(text string) bool {
	return zipPattern.MatchString(text)
}

// Intent says which location the user asked to search around.
type Intent int

const (
	UseTypedText Intent = iota
	UseDeviceLocation
)

func (i Intent) String() string {
	if i == UseDeviceLocation {
		return "device"
	}
	return "typed_text"
}

// Source records how a ResolvedLocation was produced.
type Source int

const (
	SourceDevice Source = iota
	SourceGeocoded
	SourceZipCentroid
)

func (s Source) String() string {
	switch s {
	case SourceDevice:
		return "device"
	case SourceGeocoded:
		return "geocoded"
	case SourceZipCentroid:
		return "zip_centroid"
	default:
		return "unknown"
	}
}

// ResolvedLocation is the reference point of a search.
type ResolvedLocation struct {
	Point  geo.Coordinate
	Source Source
	// CachedQueryText is the typed text the point was resolved from; empty for
	// device fixes.
	CachedQueryText string
}

// EntityLoader supplies the catalog used for ZIP centroids. *catalog.Catalog
// satisfies it.
type EntityLoader interface {
	Load(ctx context.Context) ([]catalog.Entity, error)
}

// StaticEntities is a fixed EntityLoader.
type StaticEntities []catalog.Entity

// Load implements EntityLoader.
func (s StaticEntities) Load(context.Context) ([]catalog.Entity, error) { return s, nil }

// Resolver resolves location intents.
type Resolver struct {
	geocoder geocode.Geocoder
	entities EntityLoader
}

// NewResolver creates a Resolver that geocodes free text with g and computes
// ZIP centroids over the entities from e. Either may be nil.
func NewResolver(g geocode.Geocoder, e EntityLoader) *Resolver {
	return &Resolver{geocoder: g, entities: e}
}

// Resolve applies, in order: a cached device fix when the intent asks for the
// device; NoLocationProvided for empty text; a catalog ZIP centroid; and
// finally a single best geocoder match.
func (r *Resolver) Resolve(ctx context.Context, intent Intent, rawText string, devicePoint *geo.Coordinate) (ResolvedLocation, error) {
	if intent == UseDeviceLocation && devicePoint != nil {
		return ResolvedLocation{Point: *devicePoint, Source: SourceDevice}, nil
	}

	text := strings.TrimSpace(rawText)
	if text == "" {
		return ResolvedLocation{}, ErrNoLocationProvided
	}

	if IsZip(text) {
		var entities []catalog.Entity
		if r.entities != nil {
			var err error
			if entities, err = r.entities.Load(ctx); err != nil {
				zap.L().Warn("locate: load entities for zip", zap.String("zip", text), zap.Error(err))
				return ResolvedLocation{}, catalog.ErrDataSourceUnavailable
			}
		}
		c, ok := ZipCentroid(text, entities)
		if !ok {
			return ResolvedLocation{}, ErrZipNotFound
		}
		return ResolvedLocation{Point: c, Source: SourceZipCentroid, CachedQueryText: text}, nil
	}

	if r.geocoder == nil {
		return ResolvedLocation{}, ErrGeocodeNotFound
	}
	res, err := r.geocoder.Geocode(ctx, text)
	if err != nil {
		zap.L().Warn("locate: geocode failed", zap.String("query", text), zap.Error(err))
		return ResolvedLocation{}, ErrGeocodeNotFound
	}
	if res == nil || !res.Matched {
		return ResolvedLocation{}, ErrGeocodeNotFound
	}
	point := geo.Coordinate{Lat: res.Latitude, Lon: res.Longitude}
	if !point.Valid() {
		return ResolvedLocation{}, ErrGeocodeNotFound
	}
	return ResolvedLocation{Point: point, Source: SourceGeocoded, CachedQueryText: text}, nil
}

// ZipCentroid averages the coordinates of locatable entities whose zip equals
// zip exactly. ok is false when no such entity exists.
func ZipCentroid(zip string, entities []catalog.Entity) (c geo.Coordinate, ok bool) {
	var sumLat, sumLon float64
	var n int
	for _, e := range entities {
		if e.Zip != zip {
			continue
		}
		p, locatable := e.Coordinate()
		if !locatable {
			continue
		}
		sumLat += p.Lat
		sumLon += p.Lon
		n++
	}
	if n == 0 {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: sumLat / float64(n), Lon: sumLon / float64(n)}, true
}
