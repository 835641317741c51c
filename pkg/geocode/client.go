// Package geocode turns free-text locations into coordinates (Nominatim primary,
// Google fallback) and coordinates back into short place labels.
package geocode

import (
	"context"
	"fmt"
	"strings"
)

// Geocoder resolves free text to its single best match.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Result, error)
}

// Reverser describes the place at a coordinate.
type Reverser interface {
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

// Result holds the geocoding output for a query. Matched is false when the
// provider answered but had no match; that is not an error.
type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
	Source      string // "nominatim" or "google"
	Quality     string // "rooftop", "range", "centroid", "approximate"
	Matched     bool
}

// Place is the address breakdown returned by reverse geocoding.
type Place struct {
	Postcode string
	Town     string
	State    string
}

// Label returns the postcode when known, otherwise "town, state", otherwise "".
func (p *Place) Label() string {
	if p == nil {
		return ""
	}
	if p.Postcode != "" {
		return p.Postcode
	}
	if p.Town != "" && p.State != "" {
		return fmt.Sprintf("%s, %s", p.Town, p.State)
	}
	return ""
}

// normalizeQuery is the cache key form of a query.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
