// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/sourcefinder/internal/metrics"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// KnownSources lists every built-in adapter in registration order.
func KnownSources() []string {
	return []string{
		SourceCrossref,
		SourceOpenAlex,
		SourcePubMed,
		SourceSemanticScholar,
		SourceArxiv,
		SourceOpenLibrary,
		SourcePatentsView,
		SourceGoogleBooks,
	}
}

// NewAdapters builds the adapters enabled by cfg, sharing base for HTTP,
// logging and metrics. An empty cfg.Sources enables every adapter whose
// credentials are present; PatentsView needs an API key. Naming an unknown
// source, or PatentsView without a key, is an error.
func NewAdapters(cfg types.SearchConfig, base Base) ([]Adapter, error) {
	cfg = cfg.WithDefaults()
	base.HTTP = cfg.HTTPConfig

	wanted := make(map[string]bool)
	explicit := len(cfg.Sources) > 0
	for _, name := range cfg.Sources {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !isKnownSource(name) {
			return nil, errors.Newf("unknown source %q (known: %s)", name, strings.Join(KnownSources(), ", "))
		}
		wanted[name] = true
	}

	var adapters []Adapter
	for _, name := range KnownSources() {
		if explicit && !wanted[name] {
			continue
		}
		switch name {
		case SourceCrossref:
			adapters = append(adapters, &CrossrefAdapter{Base: base, Mailto: cfg.ContactEmail})
		case SourceOpenAlex:
			adapters = append(adapters, &OpenAlexAdapter{Base: base, Email: cfg.ContactEmail})
		case SourcePubMed:
			adapters = append(adapters, &PubMedAdapter{Base: base, APIKey: cfg.NCBIAPIKey, Email: cfg.ContactEmail})
		case SourceSemanticScholar:
			adapters = append(adapters, &SemanticScholarAdapter{Base: base, APIKey: cfg.SemanticScholarAPIKey})
		case SourceArxiv:
			adapters = append(adapters, &ArxivAdapter{Base: base})
		case SourceOpenLibrary:
			adapters = append(adapters, &OpenLibraryAdapter{Base: base})
		case SourcePatentsView:
			if cfg.PatentsViewAPIKey == "" {
				if explicit {
					return nil, errors.New("source patentsview requires an API key")
				}
				continue
			}
			adapters = append(adapters, &PatentsViewAdapter{Base: base, APIKey: cfg.PatentsViewAPIKey})
		case SourceGoogleBooks:
			adapters = append(adapters, &GoogleBooksAdapter{Base: base, APIKey: cfg.GoogleBooksAPIKey})
		}
	}
	return adapters, nil
}

// WithCache wraps every adapter in a CachedAdapter backed by c.
func WithCache(adapters []Adapter, c ResponseCache, m *metrics.Metrics) []Adapter {
	out := make([]Adapter, len(adapters))
	for i, a := range adapters {
		out[i] = &CachedAdapter{Adapter: a, Cache: c, Metrics: m}
	}
	return out
}

// Names returns the adapter names in order.
func Names(adapters []Adapter) []string {
	out := make([]string, len(adapters))
	for i, a := range adapters {
		out[i] = a.Name()
	}
	return out
}

func isKnownSource(name string) bool {
	for _, s := range KnownSources() {
		if s == name {
			return true
		}
	}
	return false
}
