package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounds(t *testing.T) {
	b, ok := Bounds([]Coordinate{
		{Lat: 40.2, Lon: -77.0},
		{Lat: 40.4, Lon: -77.2},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 39.9, Lon: -76.5},
	})
	require.True(t, ok)
	assert.InDelta(t, -77.2, b.Min(0), 1e-9)
	assert.InDelta(t, 39.9, b.Min(1), 1e-9)
	assert.InDelta(t, -76.5, b.Max(0), 1e-9)
	assert.InDelta(t, 40.4, b.Max(1), 1e-9)

	c := Center(b)
	assert.InDelta(t, 40.15, c.Lat, 1e-9)
	assert.InDelta(t, -76.85, c.Lon, 1e-9)
}

func TestBounds_NoValidPoints(t *testing.T) {
	b, ok := Bounds(nil)
	assert.False(t, ok)
	assert.Nil(t, b)

	_, ok = Bounds([]Coordinate{{Lat: 200, Lon: 0}})
	assert.False(t, ok)
}

func TestPadBounds_Clamps(t *testing.T) {
	b, ok := Bounds([]Coordinate{{Lat: 89.9, Lon: 179.9}, {Lat: 0, Lon: 0}})
	require.True(t, ok)

	padded := PadBounds(b, 1)
	assert.InDelta(t, -1, padded.Min(0), 1e-9)
	assert.InDelta(t, -1, padded.Min(1), 1e-9)
	assert.InDelta(t, 180, padded.Max(0), 1e-9)
	assert.InDelta(t, 90, padded.Max(1), 1e-9)
}
