package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/directory-locator/internal/catalog"
	"github.com/sells-group/directory-locator/internal/device"
	"github.com/sells-group/directory-locator/internal/geo"
	"github.com/sells-group/directory-locator/internal/locate"
	"github.com/sells-group/directory-locator/pkg/geocode"
)

// Response is the outcome of Session.OnSearchRequested. Results is never nil.
// Reason explains an empty result: locate.ErrNoLocationProvided,
// locate.ErrZipNotFound, locate.ErrGeocodeNotFound or
// catalog.ErrDataSourceUnavailable.
type Response struct {
	RequestID string
	Results   []ScoredEntity
	Resolved  *locate.ResolvedLocation
	Reason    error
	// Stale is set when a newer search started before this one finished.
	Stale bool
}

// DeviceFix is the outcome of Session.OnDeviceLocationRequested.
type DeviceFix struct {
	Point geo.Coordinate
	// Label is a reverse-geocoded place name, or "lat, lon" when none is known.
	Label string
}

// Session owns the state of one user's interaction: the current location
// source and the last typed resolution.
type Session struct {
	entities locate.EntityLoader
	resolver *locate.Resolver
	locator  *device.Locator
	reverser geocode.Reverser

	mu          sync.Mutex
	source      locate.LocationSource
	cached      *locate.ResolvedLocation
	latest      string
	resolutions int
}

// NewSession wires a session. locator and reverser may be nil.
func NewSession(entities locate.EntityLoader, resolver *locate.Resolver, locator *device.Locator, reverser geocode.Reverser) *Session {
	return &Session{
		entities: entities,
		resolver: resolver,
		locator:  locator,
		reverser: reverser,
		source:   locate.NoLocation(),
	}
}

// Source returns the current location source.
func (s *Session) Source() locate.LocationSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Resolutions counts resolver calls made by this session.
func (s *Session) Resolutions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolutions
}

// SetText records an edit of the typed location. It discards any device fix.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setTextLocked(text)
}

func (s *Session) setTextLocked(text string) {
	text = strings.TrimSpace(text)
	s.source = s.source.WithTypedText(text)
	if s.cached != nil && s.cached.CachedQueryText != text {
		s.cached = nil
	}
}

// OnDeviceLocationRequested acquires a device fix and makes it the current
// location. Failures are *device.Error and leave the session unchanged.
func (s *Session) OnDeviceLocationRequested(ctx context.Context) (DeviceFix, error) {
	if s.locator == nil {
		return DeviceFix{}, &device.Error{Kind: device.Unavailable}
	}
	c, err := s.locator.Acquire(ctx)
	if err != nil {
		zap.L().Warn("search: device location failed", zap.Error(err))
		return DeviceFix{}, err
	}

	s.mu.Lock()
	s.source = s.source.WithDeviceFix(c)
	s.cached = nil
	s.mu.Unlock()

	return DeviceFix{Point: c, Label: s.label(ctx, c)}, nil
}

func (s *Session) label(ctx context.Context, c geo.Coordinate) string {
	if s.reverser != nil {
		place, err := s.reverser.Reverse(ctx, c.Lat, c.Lon)
		if err != nil {
			zap.L().Debug("search: reverse geocode failed", zap.Error(err))
		} else if l := place.Label(); l != "" {
			return l
		}
	}
	return fmt.Sprintf("%.5f, %.5f", c.Lat, c.Lon)
}

// OnSearchRequested resolves the reference point and loads the catalog
// concurrently, then filters and orders the catalog. Any failure yields an
// empty result with Reason set. With the typed-text intent, q.RawText
// replaces the typed location first.
func (s *Session) OnSearchRequested(ctx context.Context, q Query) Response {
	id := uuid.NewString()
	log := zap.L().With(zap.String("request_id", id))

	s.mu.Lock()
	s.latest = id
	if q.Intent == locate.UseTypedText {
		s.setTextLocked(q.RawText)
	}
	src := s.source
	var reuse *locate.ResolvedLocation
	if _, ok := src.TypedPoint(); ok && s.cached != nil && s.cached.CachedQueryText == src.Text() {
		r := *s.cached
		reuse = &r
	}
	if reuse == nil {
		s.resolutions++
	}
	s.mu.Unlock()

	devicePoint, _ := src.DevicePoint()
	text := src.Text()

	var (
		g        errgroup.Group
		entities []catalog.Entity
		resolved locate.ResolvedLocation
		loadErr  error
		resErr   error
	)
	g.Go(func() error {
		entities, loadErr = s.entities.Load(ctx)
		return loadErr
	})
	g.Go(func() error {
		if reuse != nil {
			resolved = *reuse
			return nil
		}
		resolved, resErr = s.resolver.Resolve(ctx, q.Intent, text, devicePoint)
		return resErr
	})
	_ = g.Wait()

	resp := Response{RequestID: id, Results: []ScoredEntity{}}

	s.mu.Lock()
	resp.Stale = s.latest != id
	if resErr == nil && !resp.Stale && resolved.Source != locate.SourceDevice {
		s.source = s.source.WithResolved(resolved.CachedQueryText, resolved.Point)
		r := resolved
		s.cached = &r
	}
	s.mu.Unlock()

	switch {
	case loadErr != nil:
		resp.Reason = loadErr
	case resErr != nil:
		resp.Reason = resErr
	default:
		resp.Resolved = &resolved
		resp.Results = Search(q, entities, &resolved)
	}

	log.Debug("search: completed",
		zap.Int("results", len(resp.Results)),
		zap.Bool("reused_location", reuse != nil),
		zap.Bool("stale", resp.Stale),
		zap.NamedError("reason", resp.Reason),
	)
	return resp
}
