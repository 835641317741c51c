package geocode

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Cascade tries geocoders in order until one matches. Matches and misses are
// memoized in memory for the configured TTL.
type Cascade struct {
	providers []Geocoder
	cache     *cache.Cache
}

// NewCascade creates a Cascade. A ttl of zero disables memoization.
func NewCascade(ttl time.Duration, providers ...Geocoder) *Cascade {
	c := &Cascade{providers: providers}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

// Geocode implements Geocoder. Provider errors are logged and the next
// provider is tried; an error is returned only when every provider failed.
func (c *Cascade) Geocode(ctx context.Context, query string) (*Result, error) {
	key := normalizeQuery(query)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			cached := *v.(*Result)
			zap.L().Debug("geocode cache hit", zap.String("query", key), zap.Bool("matched", cached.Matched))
			return &cached, nil
		}
	}

	var lastErr error
	answered := false
	for _, p := range c.providers {
		result, err := p.Geocode(ctx, query)
		if err != nil {
			zap.L().Debug("geocode: provider error, trying next", zap.Error(err))
			lastErr = err
			continue
		}
		answered = true
		if result != nil && result.Matched {
			c.store(key, result)
			return result, nil
		}
	}

	if !answered && lastErr != nil {
		return nil, lastErr
	}

	noMatch := &Result{Matched: false, Source: "cascade"}
	c.store(key, noMatch)
	return noMatch, nil
}

func (c *Cascade) store(key string, r *Result) {
	if c.cache == nil {
		return
	}
	stored := *r
	c.cache.Set(key, &stored, cache.DefaultExpiration)
}
