package present

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-locator/internal/search"
)

type jsonResult struct {
	Name          string   `json:"name"`
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
	Zip           string   `json:"zip,omitempty"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Website       string   `json:"website,omitempty"`
	DistanceMiles float64  `json:"distance_miles"`
	MapsURL       string   `json:"maps_url"`
}

type jsonLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"`
	Query     string  `json:"query,omitempty"`
}

type jsonResponse struct {
	RequestID string        `json:"request_id"`
	Location  *jsonLocation `json:"location,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Stale     bool          `json:"stale,omitempty"`
	Results   []jsonResult  `json:"results"`
}

// JSON writes the response as an indented JSON document.
func JSON(w io.Writer, resp search.Response) error {
	out := jsonResponse{RequestID: resp.RequestID, Stale: resp.Stale, Results: make([]jsonResult, 0, len(resp.Results))}
	if resp.Reason != nil {
		out.Reason = resp.Reason.Error()
	}
	if resp.Resolved != nil {
		out.Location = &jsonLocation{
			Latitude:  resp.Resolved.Point.Lat,
			Longitude: resp.Resolved.Point.Lon,
			Source:    resp.Resolved.Source.String(),
			Query:     resp.Resolved.CachedQueryText,
		}
	}
	for _, r := range resp.Results {
		out.Results = append(out.Results, jsonResult{
			Name:          r.Name,
			Address:       r.Address,
			City:          r.City,
			Zip:           r.Zip,
			Latitude:      r.Latitude,
			Longitude:     r.Longitude,
			Website:       r.Website,
			DistanceMiles: r.DistanceMiles,
			MapsURL:       MapsURL(r.Entity),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "present: encode json")
	}
	return nil
}
