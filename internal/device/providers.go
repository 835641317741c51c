package device

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/directory-locator/internal/geo"
)

// DisabledProvider refuses every request.
type DisabledProvider struct{}

// CurrentPosition implements Provider.
func (DisabledProvider) CurrentPosition(context.Context, Options) (geo.Coordinate, error) {
	return geo.Coordinate{}, &Error{Kind: PermissionDenied}
}

// StaticProvider always reports the same configured position.
type StaticProvider struct {
	Point geo.Coordinate
}

// CurrentPosition implements Provider.
func (s StaticProvider) CurrentPosition(context.Context, Options) (geo.Coordinate, error) {
	return s.Point, nil
}

// DefaultIPURL is an ip-api.com compatible endpoint.
const DefaultIPURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPProvider locates the machine from its public IP address. The last fix is
// kept and reused while it is younger than Options.MaxAge.
type IPProvider struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time

	mu      sync.Mutex
	last    geo.Coordinate
	fixedAt time.Time
}

// NewIPProvider creates an IPProvider for an ip-api compatible URL. hc may be nil.
func NewIPProvider(url string, hc *http.Client) *IPProvider {
	if url == "" {
		url = DefaultIPURL
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &IPProvider{
		url:        url,
		httpClient: hc,
		// ip-api allows 45 requests per minute without a key.
		limiter: rate.NewLimiter(rate.Every(time.Minute/45), 1),
		now:     time.Now,
	}
}

type ipAPIResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// CurrentPosition implements Provider. HighAccuracy has no effect on IP lookups.
func (p *IPProvider) CurrentPosition(ctx context.Context, opts Options) (geo.Coordinate, error) {
	p.mu.Lock()
	if !p.fixedAt.IsZero() && opts.MaxAge > 0 && p.now().Sub(p.fixedAt) <= opts.MaxAge {
		c := p.last
		p.mu.Unlock()
		zap.L().Debug("device: reusing cached fix", zap.Duration("max_age", opts.MaxAge))
		return c, nil
	}
	p.mu.Unlock()

	if err := p.limiter.Wait(ctx); err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "device: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "device: build request")
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "device: ip lookup")
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return geo.Coordinate{}, &Error{Kind: PermissionDenied, Err: eris.Errorf("ip lookup returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return geo.Coordinate{}, eris.Errorf("device: ip lookup returned status %d", resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geo.Coordinate{}, eris.Wrap(err, "device: parse ip lookup")
	}
	if body.Status != "" && body.Status != "success" {
		return geo.Coordinate{}, eris.Errorf("device: ip lookup failed: %s", body.Message)
	}
	if body.Lat == nil || body.Lon == nil {
		return geo.Coordinate{}, eris.New("device: ip lookup returned no coordinates")
	}

	c := geo.Coordinate{Lat: *body.Lat, Lon: *body.Lon}
	p.mu.Lock()
	p.last = c
	p.fixedAt = p.now()
	p.mu.Unlock()
	return c, nil
}
