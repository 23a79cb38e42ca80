// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fans a bibliographic query out to metadata provider
// adapters and returns one ranked, deduplicated page of suggestions.
//
// The Router selects the adapters able to serve the requested field, calls
// them concurrently and waits for all of them; failed adapters contribute
// nothing. The Ranker merges duplicates across providers and orders the pool.
package search

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/sourcefinder/internal/metrics"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// Router turns one SearchRequest into one SearchResult.
type Router struct {
	adapters        []Adapter
	ranker          *Ranker
	log             zerolog.Logger
	metrics         *metrics.Metrics
	tracer          trace.Tracer
	requestTimeout  time.Duration
	overfetch       float64
	totalMultiplier int
	pageSize        int
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger used for per-request diagnostics.
func WithLogger(l zerolog.Logger) RouterOption {
	return func(r *Router) { r.log = l }
}

// WithMetrics records per-adapter latency and result counts.
func WithMetrics(m *metrics.Metrics) RouterOption {
	return func(r *Router) { r.metrics = m }
}

// WithRequestTimeout bounds a whole search. Adapters still pending when it
// elapses are cancelled and contribute nothing. Zero disables the deadline.
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.requestTimeout = d }
}

// WithOverfetch sets the per-adapter page size multiplier (minimum 1).
func WithOverfetch(f float64) RouterOption {
	return func(r *Router) {
		if f >= 1 {
			r.overfetch = f
		}
	}
}

// WithTotalMultiplier sets the factor applied to the ranked count when the
// pool looks truncated.
func WithTotalMultiplier(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.totalMultiplier = n
		}
	}
}

// WithDefaultPageSize sets the page size used when a request has none.
func WithDefaultPageSize(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

// NewRouter returns a Router over adapters. A nil ranker uses the default
// source priorities.
func NewRouter(adapters []Adapter, ranker *Ranker, opts ...RouterOption) *Router {
	if ranker == nil {
		ranker = NewRanker(DefaultPriorities())
	}
	r := &Router{
		adapters:        append([]Adapter(nil), adapters...),
		ranker:          ranker,
		log:             zerolog.Nop(),
		tracer:          otel.Tracer(tracerName),
		overfetch:       types.DefaultOverfetch,
		totalMultiplier: types.DefaultTotalMultiplier,
		pageSize:        types.DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Eligible returns the registered adapters that support field, in
// registration order. An unrecognized field selects none.
func (r *Router) Eligible(field types.FieldQualifier) []Adapter {
	if !field.Valid() {
		return nil
	}
	var out []Adapter
	for _, a := range r.adapters {
		if Supports(a, field) {
			out = append(out, a)
		}
	}
	return out
}

// Search runs req against every eligible adapter and returns the ranked
// page. It never fails: when nothing answers the result is empty.
func (r *Router) Search(ctx context.Context, req types.SearchRequest) types.SearchResult {
	reqID := ksuid.New().String()
	log := r.log.With().
		Str("request_id", reqID).
		Str("field", string(req.Field)).
		Logger()

	ctx, span := r.tracer.Start(ctx, "router.search",
		trace.WithAttributes(
			attribute.String("search.request_id", reqID),
			attribute.String("search.field", string(req.Field)),
			attribute.Int("search.max_results", req.MaxResults),
			attribute.Int("search.offset", req.Offset),
		))
	defer span.End()

	empty := types.SearchResult{Suggestions: []types.Suggestion{}}

	if strings.TrimSpace(req.Query) == "" {
		log.Debug().Msg("empty query")
		return empty
	}

	selected := r.Eligible(req.Field)
	if len(selected) == 0 {
		log.Info().Msg("no adapter supports field")
		return empty
	}

	pageSize := req.MaxResults
	if pageSize <= 0 {
		pageSize = r.pageSize
	}
	perSource := int(math.Ceil(float64(pageSize) * r.overfetch))

	if r.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.requestTimeout)
		defer cancel()
	}
	ctx = log.WithContext(ctx)

	sub := types.SearchRequest{
		Query:      req.Query,
		Field:      req.Field,
		MaxResults: perSource,
		Offset:     req.Offset,
	}

	// Each goroutine owns one slot, so pool order follows registration
	// order regardless of which adapter answers first.
	batches := make([][]types.Suggestion, len(selected))
	var g errgroup.Group
	for i, a := range selected {
		i, a := i, a
		g.Go(func() error {
			start := time.Now()
			batches[i] = callAdapter(ctx, a, sub, log)
			r.metrics.ObserveSearch(a.Name(), time.Since(start), len(batches[i]))
			return nil
		})
	}
	_ = g.Wait()

	var pool []types.Suggestion
	for _, b := range batches {
		pool = append(pool, b...)
	}

	ranked := r.ranker.RankAndDedupe(req.Query, pool, req.Field)

	page := ranked
	if len(page) > pageSize {
		page = page[:pageSize]
	}

	total := len(ranked)
	if maxPool := perSource * len(selected); maxPool > 0 && 2*len(pool) >= maxPool {
		total = len(ranked) * r.totalMultiplier
	}

	log.Debug().
		Int("adapters", len(selected)).
		Int("pool", len(pool)).
		Int("ranked", len(ranked)).
		Int("total_estimate", total).
		Msg("search complete")
	span.SetAttributes(
		attribute.Int("search.pool", len(pool)),
		attribute.Int("search.ranked", len(ranked)),
	)

	return types.SearchResult{
		Suggestions: page,
		Total:       total,
		HasMore:     len(ranked) > pageSize,
	}
}

// callAdapter guards the router against an adapter that breaks the
// never-panic contract.
func callAdapter(ctx context.Context, a Adapter, req types.SearchRequest, log zerolog.Logger) (out []types.Suggestion) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("adapter", a.Name()).Interface("panic", rec).Msg("adapter panicked")
			out = nil
		}
	}()
	return a.Search(ctx, req)
}
