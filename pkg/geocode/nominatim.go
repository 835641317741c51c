package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/directory-locator/internal/resilience"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimOption configures a Nominatim client.
type NominatimOption func(*Nominatim)

// WithBaseURL overrides the Nominatim endpoint.
func WithBaseURL(u string) NominatimOption {
	return func(n *Nominatim) { n.baseURL = u }
}

// WithUserAgent sets the User-Agent header; the public instance requires one.
func WithUserAgent(ua string) NominatimOption {
	return func(n *Nominatim) { n.userAgent = ua }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) NominatimOption {
	return func(n *Nominatim) { n.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) NominatimOption {
	return func(n *Nominatim) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		n.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetryPolicy sets the retry policy for transient failures.
func WithRetryPolicy(p resilience.Policy) NominatimOption {
	return func(n *Nominatim) { n.retry = p }
}

// Nominatim implements Geocoder and Reverser against the Nominatim API.
type Nominatim struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.Policy
}

// NewNominatim creates a Nominatim client. The default limit is one request
// per second, the public instance's usage policy.
func NewNominatim(opts ...NominatimOption) *Nominatim {
	n := &Nominatim{
		baseURL:    DefaultNominatimURL,
		userAgent:  "directory-locator/1.0",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
		retry:      resilience.DefaultPolicy("nominatim"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Class       string `json:"class"`
	Type        string `json:"type"`
}

type nominatimReverse struct {
	Error   string `json:"error"`
	Address struct {
		Postcode string `json:"postcode"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		Hamlet   string `json:"hamlet"`
		Suburb   string `json:"suburb"`
		State    string `json:"state"`
	} `json:"address"`
}

// Geocode asks for exactly one match for query.
func (n *Nominatim) Geocode(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"format": {"json"},
		"limit":  {"1"},
		"q":      {query},
	}

	var hits []nominatimHit
	if err := n.getJSON(ctx, "/search", params, &hits); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim search")
	}
	if len(hits) == 0 {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	lat, latErr := strconv.ParseFloat(hits[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(hits[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, eris.Errorf("geocode: nominatim returned non-numeric coordinates %q,%q", hits[0].Lat, hits[0].Lon)
	}

	return &Result{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: hits[0].DisplayName,
		Source:      "nominatim",
		Quality:     nominatimQuality(hits[0].Class, hits[0].Type),
		Matched:     true,
	}, nil
}

// Reverse returns the address parts at lat/lon.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	params := url.Values{
		"format":         {"json"},
		"addressdetails": {"1"},
		"lat":            {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(lon, 'f', -1, 64)},
	}

	var resp nominatimReverse
	if err := n.getJSON(ctx, "/reverse", params, &resp); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim reverse")
	}
	if resp.Error != "" {
		return nil, eris.Errorf("geocode: nominatim reverse: %s", resp.Error)
	}

	a := resp.Address
	return &Place{
		Postcode: a.Postcode,
		Town:     firstNonEmpty(a.City, a.Town, a.Village, a.Hamlet, a.Suburb),
		State:    a.State,
	}, nil
}

func (n *Nominatim) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	_, err := resilience.Do(ctx, n.retry, func(ctx context.Context) (struct{}, error) {
		if err := n.limiter.Wait(ctx); err != nil {
			return struct{}{}, eris.Wrap(err, "rate limit")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return struct{}{}, eris.Wrap(err, "build request")
		}
		req.Header.Set("User-Agent", n.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := n.httpClient.Do(req)
		if err != nil {
			return struct{}{}, eris.Wrap(err, "request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			statusErr := eris.Errorf("returned status %d", resp.StatusCode)
			if resilience.IsTransientStatus(resp.StatusCode) {
				return struct{}{}, resilience.NewTransientError(statusErr, resp.StatusCode)
			}
			return struct{}{}, statusErr
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, eris.Wrap(err, "parse response")
		}
		return struct{}{}, nil
	})
	return err
}

// nominatimQuality maps the OSM feature class onto the quality taxonomy.
func nominatimQuality(class, typ string) string {
	switch {
	case class == "building" || typ == "house":
		return "rooftop"
	case class == "highway":
		return "range"
	case class == "place" || class == "boundary":
		return "centroid"
	default:
		return "approximate"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
