// Package catalog loads and caches the directory entities searched by location.
package catalog

import "github.com/sells-group/directory-locator/internal/geo"

// Entity is one directory record. Latitude and Longitude are nil when the
// source did not supply a usable number.
type Entity struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Zip       string   `json:"zip"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Website   string   `json:"website,omitempty"`
}

// Coordinate returns the entity's position. ok is false when either value is
// absent or the pair is out of range; (0,0) is a valid position.
func (e Entity) Coordinate() (c geo.Coordinate, ok bool) {
	if e.Latitude == nil || e.Longitude == nil {
		return geo.Coordinate{}, false
	}
	c = geo.Coordinate{Lat: *e.Latitude, Lon: *e.Longitude}
	if !c.Valid() {
		return geo.Coordinate{}, false
	}
	return c, true
}

// Locatable reports whether the entity can take part in distance queries.
func (e Entity) Locatable() bool {
	_, ok := e.Coordinate()
	return ok
}
