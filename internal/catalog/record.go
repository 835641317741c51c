package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one raw row from a Source before it is parsed into an Entity.
type Record map[string]any

// fieldAliases lists accepted keys per entity field, compared case-insensitively
// with spaces, dashes and underscores removed.
var fieldAliases = map[string][]string{
	"name":      {"name", "churchname", "title"},
	"address":   {"address", "street", "streetaddress", "address1"},
	"city":      {"city", "town"},
	"zip":       {"zip", "zipcode", "postalcode", "postcode"},
	"latitude":  {"latitude", "lat"},
	"longitude": {"longitude", "lon", "lng", "long"},
	"website":   {"website", "url", "web", "site"},
}

// ParseRecord converts a raw record into an Entity. Field names are matched
// case-insensitively against known aliases; coordinates may be numbers or
// numeric strings. Records without a name are rejected. Non-numeric
// coordinates leave the entity unlocatable rather than failing the record.
func ParseRecord(r Record) (Entity, bool) {
	normalized := make(map[string]any, len(r))
	for k, v := range r {
		normalized[normalizeKey(k)] = v
	}

	lookup := func(field string) any {
		for _, alias := range fieldAliases[field] {
			if v, ok := normalized[alias]; ok && v != nil {
				return v
			}
		}
		return nil
	}

	e := Entity{
		Name:    stringValue(lookup("name")),
		Address: stringValue(lookup("address")),
		City:    stringValue(lookup("city")),
		Zip:     stringValue(lookup("zip")),
		Website: stringValue(lookup("website")),
	}
	if e.Name == "" {
		return Entity{}, false
	}

	lat, latOK := floatValue(lookup("latitude"))
	lon, lonOK := floatValue(lookup("longitude"))
	if latOK && lonOK {
		e.Latitude = &lat
		e.Longitude = &lon
	}
	return e, true
}

// RecordFromStrings adapts a header-keyed string row (CSV, XLSX) to a Record.
func RecordFromStrings(row map[string]string) Record {
	r := make(Record, len(row))
	for k, v := range row {
		r[k] = v
	}
	return r
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		// ZIP codes stored as numbers lose nothing below 1e15.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return ""
	}
}

func floatValue(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case []byte:
		return floatValue(string(t))
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
