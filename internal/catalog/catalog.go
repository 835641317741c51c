package catalog

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrDataSourceUnavailable is returned by Load when the source failed or
// returned no usable entities.
var ErrDataSourceUnavailable = eris.New("catalog: data source unavailable")

// Option configures a Catalog.
type Option func(*Catalog)

// WithPruneUnlocatable drops entities without a valid coordinate at load
// time. Use it only for sources known to supply validated data; search
// re-checks coordinates either way.
func WithPruneUnlocatable(prune bool) Option {
	return func(c *Catalog) { c.prune = prune }
}

// Catalog is the lazily fetched, process-lifetime cache of entities.
type Catalog struct {
	source Source
	prune  bool

	flight   singleflight.Group
	mu       sync.Mutex
	entities []Entity
	loaded   bool
	skipped  int
}

// New creates a Catalog backed by source.
func New(source Source, opts ...Option) *Catalog {
	c := &Catalog{source: source}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the catalog entities in source order. The first successful,
// non-empty fetch is cached for the life of the Catalog; a failed or empty
// fetch is not cached, so the next call fetches again. Concurrent callers
// share one fetch, and each stops waiting when its own ctx is done. The
// returned slice is a copy.
func (c *Catalog) Load(ctx context.Context) ([]Entity, error) {
	if out, ok := c.cached(); ok {
		return out, nil
	}

	// The shared fetch outlives any single caller's cancellation.
	ch := c.flight.DoChan("load", func() (any, error) {
		return nil, c.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return []Entity{}, res.Err
		}
	case <-ctx.Done():
		zap.L().Debug("catalog: caller stopped waiting for load", zap.Error(ctx.Err()))
		return []Entity{}, ErrDataSourceUnavailable
	}

	out, _ := c.cached()
	return out, nil
}

func (c *Catalog) cached() ([]Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil, false
	}
	out := make([]Entity, len(c.entities))
	copy(out, c.entities)
	return out, true
}

func (c *Catalog) load(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}

	entities, skipped, err := c.fetch(ctx)
	if err != nil {
		zap.L().Warn("catalog: load failed", zap.Error(err))
		return ErrDataSourceUnavailable
	}
	if len(entities) == 0 {
		zap.L().Warn("catalog: source returned no entities")
		return ErrDataSourceUnavailable
	}

	c.mu.Lock()
	c.entities = entities
	c.skipped = skipped
	c.loaded = true
	c.mu.Unlock()

	zap.L().Info("catalog: loaded",
		zap.Int("entities", len(entities)),
		zap.Int("skipped", skipped),
	)
	return nil
}

func (c *Catalog) fetch(ctx context.Context) (entities []Entity, skipped int, err error) {
	if c.source == nil {
		return nil, 0, eris.New("catalog: no source configured")
	}
	records, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, 0, err
	}

	entities = make([]Entity, 0, len(records))
	for _, r := range records {
		e, ok := ParseRecord(r)
		if !ok || (c.prune && !e.Locatable()) {
			skipped++
			continue
		}
		entities = append(entities, e)
	}
	return entities, skipped, nil
}

// Stats summarizes the cached catalog.
type Stats struct {
	Loaded      bool
	Entities    int
	Locatable   int
	Skipped     int
	DistinctZip int
}

// Stats reports counts for the cached entities without triggering a fetch.
func (c *Catalog) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Loaded: c.loaded, Entities: len(c.entities), Skipped: c.skipped}
	zips := make(map[string]struct{})
	for _, e := range c.entities {
		if e.Locatable() {
			s.Locatable++
		}
		if e.Zip != "" {
			zips[e.Zip] = struct{}{}
		}
	}
	s.DistinctZip = len(zips)
	return s
}
