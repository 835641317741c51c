package present

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/directory-locator/internal/geo"
	"github.com/sells-group/directory-locator/internal/lazy"
	"github.com/sells-group/directory-locator/internal/locate"
	"github.com/sells-group/directory-locator/internal/search"
)

// Style configures the map a frontend draws results on.
type Style struct {
	Center         [2]float64 `yaml:"center"` // lat, lon
	Zoom           int        `yaml:"zoom"`
	TileURL        string     `yaml:"tile_url"`
	Attribution    string     `yaml:"attribution"`
	PaddingDegrees float64    `yaml:"padding_degrees"`
}

// DefaultStyle is an OpenStreetMap view of south-central Pennsylvania.
func DefaultStyle() Style {
	return Style{
		Center:         [2]float64{40.0, -76.6},
		Zoom:           9,
		TileURL:        "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution:    "&copy; OpenStreetMap contributors",
		PaddingDegrees: 0.05,
	}
}

// LoadStyle reads a style file. Missing keys keep their DefaultStyle values.
func LoadStyle(path string) (Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, eris.Wrapf(err, "present: read map style %s", path)
	}

	var wrapper struct {
		Map Style `yaml:"map"`
	}
	wrapper.Map = DefaultStyle()
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Style{}, eris.Wrap(err, "present: parse map style")
	}
	s := wrapper.Map
	c := geo.Coordinate{Lat: s.Center[0], Lon: s.Center[1]}
	if !c.Valid() {
		return Style{}, eris.Errorf("present: invalid map center %v", s.Center)
	}
	if s.Zoom < 0 || s.Zoom > 20 {
		return Style{}, eris.Errorf("present: zoom %d out of range", s.Zoom)
	}
	return s, nil
}

// Frame is everything a map frontend needs to draw one search.
type Frame struct {
	Style      Style
	Center     geo.Coordinate
	Zoom       int
	Collection *geojson.FeatureCollection
}

// MapView builds map frames. The style file is read on first use.
type MapView struct {
	gate *lazy.Gate[Style]
}

// NewMapView creates a MapView for the style file at path, or the default
// style when path is empty.
func NewMapView(path string) *MapView {
	return &MapView{gate: lazy.NewGate("map style", func(context.Context) (Style, error) {
		if path == "" {
			return DefaultStyle(), nil
		}
		return LoadStyle(path)
	})}
}

// Frame places one point feature per result plus the search origin, and fits
// the view to them. Without results the view falls back to the style center.
func (m *MapView) Frame(ctx context.Context, results []search.ScoredEntity, origin *locate.ResolvedLocation) (Frame, error) {
	var f Frame
	err := m.gate.Do(ctx, func(s Style) error {
		f = buildFrame(s, results, origin)
		return nil
	})
	return f, err
}

func buildFrame(s Style, results []search.ScoredEntity, origin *locate.ResolvedLocation) Frame {
	f := Frame{
		Style:      s,
		Center:     geo.Coordinate{Lat: s.Center[0], Lon: s.Center[1]},
		Zoom:       s.Zoom,
		Collection: &geojson.FeatureCollection{Features: []*geojson.Feature{}},
	}

	points := make([]geo.Coordinate, 0, len(results)+1)
	for _, r := range results {
		c, ok := r.Coordinate()
		if !ok {
			continue
		}
		points = append(points, c)
		f.Collection.Features = append(f.Collection.Features, &geojson.Feature{
			Geometry: pointGeom(c),
			Properties: map[string]interface{}{
				"kind":           "entity",
				"name":           r.Name,
				"address":        addressLine(r),
				"website":        r.Website,
				"maps_url":       MapsURL(r.Entity),
				"distance_miles": math.Round(r.DistanceMiles*10) / 10,
				"distance_label": FormatDistance(r.DistanceMiles),
			},
		})
	}
	if origin != nil {
		f.Collection.Features = append(f.Collection.Features, &geojson.Feature{
			Geometry: pointGeom(origin.Point),
			Properties: map[string]interface{}{
				"kind":   "origin",
				"source": origin.Source.String(),
				"query":  origin.CachedQueryText,
			},
		})
	}

	if len(points) == 0 {
		if origin != nil {
			f.Center = origin.Point
		}
		return f
	}
	if origin != nil {
		points = append(points, origin.Point)
	}
	b, ok := geo.Bounds(points)
	if !ok {
		return f
	}
	b = geo.PadBounds(b, s.PaddingDegrees)
	f.Collection.BBox = b
	f.Center = geo.Center(b)
	f.Zoom = fitZoom(b, s.Zoom)
	return f
}

func pointGeom(c geo.Coordinate) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat})
}

// fitZoom picks the largest web-mercator zoom whose 360 degree world width
// still shows the whole box; fallback is used for a zero-size box.
func fitZoom(b *geom.Bounds, fallback int) int {
	span := math.Max(b.Max(0)-b.Min(0), b.Max(1)-b.Min(1))
	if span <= 0 {
		return fallback
	}
	z := int(math.Floor(math.Log2(360 / span)))
	return max(2, min(z, 18))
}

// GeoJSON writes the frame's feature collection.
func GeoJSON(w io.Writer, f Frame) error {
	data, err := json.MarshalIndent(f.Collection, "", "  ")
	if err != nil {
		return eris.Wrap(err, "present: encode geojson")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return eris.Wrap(err, "present: write geojson")
	}
	return nil
}
