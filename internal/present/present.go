// Package present renders search results as text cards, JSON or GeoJSON.
package present

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-locator/internal/catalog"
)

// Format selects an output renderer.
type Format string

const (
	FormatCards   Format = "cards"
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat validates an output format name. Empty means cards.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCards, nil
	case FormatCards, FormatJSON, FormatGeoJSON:
		return f, nil
	default:
		return "", eris.Errorf("present: unknown format %q", s)
	}
}

// MapsURL links to a Google Maps search for the entity.
func MapsURL(e catalog.Entity) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Name, e.Address, e.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	q := strings.ReplaceAll(url.QueryEscape(strings.Join(parts, " ")), "+", "%20")
	return "https://www.google.com/maps/search/?api=1&query=" + q
}

// FormatDistance renders miles with one decimal, or "?" when unknown.
func FormatDistance(miles float64) string {
	if math.IsNaN(miles) || math.IsInf(miles, 0) || miles < 0 {
		return "?"
	}
	return fmt.Sprintf("%.1f mi", miles)
}
