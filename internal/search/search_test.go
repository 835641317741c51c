package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/directory-locator/internal/catalog"
	"github.com/sells-group/directory-locator/internal/geo"
	"github.com/sells-group/directory-locator/internal/locate"
)

func ptr(f float64) *float64 { return &f }

func entity(name string, lat, lon float64) catalog.Entity {
	return catalog.Entity{Name: name, Latitude: ptr(lat), Longitude: ptr(lon)}
}

func at(lat, lon float64) *locate.ResolvedLocation {
	return &locate.ResolvedLocation{Point: geo.Coordinate{Lat: lat, Lon: lon}, Source: locate.SourceGeocoded}
}

func names(results []ScoredEntity) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

func TestSearch_NoResolvedLocation(t *testing.T) {
	got := Search(Query{RadiusMiles: Unbounded}, []catalog.Entity{entity("A", 1, 1)}, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_EmptyCatalog(t *testing.T) {
	got := Search(Query{RadiusMiles: 25}, nil, at(40, -76.6))
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_SkipsUnlocatable(t *testing.T) {
	entities := []catalog.Entity{
		{Name: "NoCoords"},
		{Name: "HalfCoords", Latitude: ptr(40)},
		entity("Grace", 40.2, -77.0),
	}
	got := Search(Query{RadiusMiles: Unbounded}, entities, at(40, -76.6))
	assert.Equal(t, []string{"Grace"}, names(got))
}

func TestSearch_NullIslandIsValid(t *testing.T) {
	got := Search(Query{RadiusMiles: 0}, []catalog.Entity{entity("Null Island", 0, 0)}, at(0, 0))
	require.Len(t, got, 1)
	assert.Zero(t, got[0].DistanceMiles)
}

func TestSearch_KeepsAntipodalEntity(t *testing.T) {
	got := Search(Query{RadiusMiles: Unbounded}, []catalog.Entity{entity("Far Side", 15.469, 144.383)}, at(-15.469, -35.617))
	require.Len(t, got, 1)
	assert.False(t, math.IsNaN(got[0].DistanceMiles))
	assert.InDelta(t, math.Pi*geo.EarthRadiusMiles, got[0].DistanceMiles, 0.01)
}

func TestSearch_RadiusZeroKeepsOnlyCoincident(t *testing.T) {
	entities := []catalog.Entity{entity("Here", 40, -76.6), entity("Near", 40.001, -76.6)}
	got := Search(Query{RadiusMiles: 0}, entities, at(40, -76.6))
	assert.Equal(t, []string{"Here"}, names(got))
}

func TestSearch_RadiusIsInclusive(t *testing.T) {
	origin := geo.Coordinate{Lat: 40, Lon: -76.6}
	far := entity("Edge", 41, -76.6)
	c, _ := far.Coordinate()
	edge := geo.Distance(origin, c)

	got := Search(Query{RadiusMiles: edge}, []catalog.Entity{far}, at(origin.Lat, origin.Lon))
	require.Len(t, got, 1)
	assert.Equal(t, edge, got[0].DistanceMiles)

	got = Search(Query{RadiusMiles: math.Nextafter(edge, 0)}, []catalog.Entity{far}, at(origin.Lat, origin.Lon))
	assert.Empty(t, got)
}

func TestSearch_DistanceSortIsStable(t *testing.T) {
	entities := []catalog.Entity{
		entity("Far", 41, -76.6),
		entity("North", 40.5, -76.6),
		entity("NorthTwin", 40.5, -76.6),
		entity("Here", 40, -76.6),
	}
	got := Search(Query{RadiusMiles: Unbounded, Sort: SortDistance}, entities, at(40, -76.6))
	assert.Equal(t, []string{"Here", "North", "NorthTwin", "Far"}, names(got))
	assert.InDelta(t, 69.1, got[3].DistanceMiles, 0.5)
}

func TestSearch_NameSortIsCollatedAndStable(t *testing.T) {
	a1 := entity("apple", 40, -76)
	a1.City = "first"
	a2 := entity("apple", 41, -76)
	a2.City = "second"
	entities := []catalog.Entity{entity("cherry", 40, -76), a1, entity("Banana", 40, -76), a2}

	got := Search(Query{RadiusMiles: Unbounded, Sort: SortName}, entities, at(40, -76))
	assert.Equal(t, []string{"apple", "apple", "Banana", "cherry"}, names(got))
	assert.Equal(t, "first", got[0].City)
	assert.Equal(t, "second", got[1].City)
}

func TestSearch_SortNonePreservesCatalogOrder(t *testing.T) {
	entities := []catalog.Entity{entity("Far", 41, -76.6), entity("Here", 40, -76.6)}
	got := Search(Query{RadiusMiles: Unbounded, Sort: SortNone}, entities, at(40, -76.6))
	assert.Equal(t, []string{"Far", "Here"}, names(got))
}

func TestSearch_DoesNotMutateCatalog(t *testing.T) {
	entities := []catalog.Entity{entity("A", 41, -76.6), entity("B", 40, -76.6)}
	before := []string{entities[0].Name, entities[1].Name}

	got := Search(Query{RadiusMiles: Unbounded}, entities, at(40, -76.6))
	got[0].Name = "changed"
	assert.Equal(t, before, []string{entities[0].Name, entities[1].Name})
}

func TestParseSortMode(t *testing.T) {
	for in, want := range map[string]SortMode{"": SortDistance, "distance": SortDistance, "Name": SortName, "none": SortNone} {
		got, err := ParseSortMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSortMode("rating")
	assert.Error(t, err)
	assert.Equal(t, "name", SortName.String())
}

func TestParseRadius(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "", want: Unbounded},
		{in: "any", want: Unbounded},
		{in: "Unbounded", want: Unbounded},
		{in: "25", want: 25},
		{in: "10 mi", want: 10},
		{in: "2.5miles", want: 2.5},
		{in: "0", want: 0},
		{in: "-1", wantErr: true},
		{in: "far", wantErr: true},
		{in: "NaN", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRadius(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
