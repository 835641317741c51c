package geo

import (
	"github.com/twpayne/go-geom"
)

// Bounds returns the bounding box of the valid points, with X as longitude and
// Y as latitude. ok is false when no valid point was supplied.
func Bounds(points []Coordinate) (b *geom.Bounds, ok bool) {
	b = geom.NewBounds(geom.XY)
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		b.Extend(geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}))
		ok = true
	}
	if !ok {
		return nil, false
	}
	return b, true
}

// PadBounds grows b by margin degrees on every side, clamped to the valid range.
func PadBounds(b *geom.Bounds, margin float64) *geom.Bounds {
	if b == nil || b.IsEmpty() {
		return b
	}
	minLon := clamp(b.Min(0)-margin, -180, 180)
	minLat := clamp(b.Min(1)-margin, -90, 90)
	maxLon := clamp(b.Max(0)+margin, -180, 180)
	maxLat := clamp(b.Max(1)+margin, -90, 90)
	return geom.NewBounds(geom.XY).Set(minLon, minLat, maxLon, maxLat)
}

// Center returns the midpoint of b.
func Center(b *geom.Bounds) Coordinate {
	return Coordinate{
		Lat: (b.Min(1) + b.Max(1)) / 2,
		Lon: (b.Min(0) + b.Max(0)) / 2,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
