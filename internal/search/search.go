// Package search filters the catalog by distance from a resolved location,
// orders the matches, and runs searches for an interactive session.
package search

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sells-group/directory-locator/internal/catalog"
	"github.com/sells-group/directory-locator/internal/geo"
	"github.com/sells-group/directory-locator/internal/locate"
)

// Unbounded is the radius that keeps every locatable entity.
var Unbounded = math.Inf(1)

// SortMode orders search results.
type SortMode int

const (
	SortDistance SortMode = iota
	SortName
	SortNone
)

func (m SortMode) String() string {
	switch m {
	case SortName:
		return "name"
	case SortNone:
		return "none"
	default:
		return "distance"
	}
}

// ParseSortMode accepts "distance", "name" or "none"; empty means distance.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "distance":
		return SortDistance, nil
	case "name":
		return SortName, nil
	case "none":
		return SortNone, nil
	default:
		return SortDistance, eris.Errorf("search: unknown sort mode %q", s)
	}
}

// ParseRadius parses a radius in miles, optionally suffixed "mi" or "miles".
// Empty, "any", "all" and "unbounded" mean Unbounded.
func ParseRadius(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "any", "unbounded", "all":
		return Unbounded, nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "miles"), "mi"))
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(r) {
		return 0, eris.Errorf("search: invalid radius %q", s)
	}
	if r < 0 {
		return 0, eris.Errorf("search: radius must not be negative, got %v", r)
	}
	return r, nil
}

// Query is one search request.
type Query struct {
	RawText     string
	RadiusMiles float64
	Sort        SortMode
	Intent      locate.Intent
}

// ScoredEntity is a catalog entity with its distance from the search point.
type ScoredEntity struct {
	catalog.Entity
	DistanceMiles float64
}

// Search returns the locatable entities within q.RadiusMiles of resolved,
// ordered by q.Sort. A nil resolved location yields no results. The result is
// always a fresh, non-nil slice; entities are copied, never modified.
func Search(q Query, entities []catalog.Entity, resolved *locate.ResolvedLocation) []ScoredEntity {
	out := []ScoredEntity{}
	if resolved == nil {
		return out
	}

	for _, e := range entities {
		c, ok := e.Coordinate()
		if !ok {
			continue
		}
		d := geo.Distance(resolved.Point, c)
		if d <= q.RadiusMiles {
			out = append(out, ScoredEntity{Entity: e, DistanceMiles: d})
		}
	}

	switch q.Sort {
	case SortDistance:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DistanceMiles < out[j].DistanceMiles
		})
	case SortName:
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortNone:
	}
	return out
}
