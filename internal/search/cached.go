// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pdiddy/sourcefinder/internal/metrics"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// ResponseCache stores adapter responses. cache.Store implements it.
type ResponseCache interface {
	Get(ctx context.Context, adapter string, req types.SearchRequest) ([]types.Suggestion, bool, error)
	Put(ctx context.Context, adapter string, req types.SearchRequest, suggestions []types.Suggestion) error
}

// CachedAdapter serves repeated requests from a ResponseCache. Only
// non-empty responses are stored, so an outage is never pinned. Cache
// errors count as a miss.
type CachedAdapter struct {
	Adapter
	Cache   ResponseCache
	Metrics *metrics.Metrics
}

// Search returns the cached response for req or delegates to the wrapped
// adapter.
func (c *CachedAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	name := c.Adapter.Name()
	log := zerolog.Ctx(ctx)

	cached, ok, err := c.Cache.Get(ctx, name, req)
	switch {
	case err != nil:
		log.Warn().Str("adapter", name).Err(err).Msg("cache read failed")
	case ok:
		c.Metrics.CacheHit(name)
		return cached
	}

	out := c.Adapter.Search(ctx, req)
	if len(out) == 0 {
		return out
	}
	if err := c.Cache.Put(ctx, name, req, out); err != nil {
		log.Warn().Str("adapter", name).Err(err).Msg("cache write failed")
	}
	return out
}
