package types

import "time"

// HTTPConfig holds shared HTTP settings used by every provider adapter.
type HTTPConfig struct {
	// Timeout bounds a single outbound provider call (default 8s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sourcefinder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CacheConfig controls the optional SQLite response cache.
type CacheConfig struct {
	// Enabled turns the cache on.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// TTL is how long a cached adapter response stays valid (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// SearchConfig holds settings for the router and its adapters.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the default page size when a request carries none (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// RequestTimeout bounds a whole search across all adapters. Zero
	// disables the request-level deadline.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`

	// Overfetch multiplies the page size for each per-adapter request (default 1.5).
	Overfetch float64 `json:"overfetch" yaml:"overfetch" mapstructure:"overfetch"`

	// TotalMultiplier scales the ranked count when the pool looks truncated
	// (default 3). The resulting total is an estimate.
	TotalMultiplier int `json:"total_multiplier" yaml:"total_multiplier" mapstructure:"total_multiplier"`

	// Sources lists the enabled adapters by name. Empty enables every
	// adapter whose credentials are available.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty" mapstructure:"sources"`

	// ContactEmail is sent as mailto for the Crossref and OpenAlex polite pools.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty" mapstructure:"contact_email"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// GoogleBooksAPIKey is an optional Google Books API key.
	GoogleBooksAPIKey string `json:"google_books_api_key,omitempty" yaml:"google_books_api_key,omitempty" mapstructure:"google_books_api_key"`

	// NCBIAPIKey is an optional E-utilities key for PubMed.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty" mapstructure:"ncbi_api_key"`

	// PatentsViewAPIKey enables the PatentsView adapter when set.
	PatentsViewAPIKey string `json:"patentsview_api_key,omitempty" yaml:"patentsview_api_key,omitempty" mapstructure:"patentsview_api_key"`

	Cache CacheConfig `json:"cache" yaml:"cache" mapstructure:"cache"`
}

// Defaults used when a SearchConfig field is left at its zero value.
const (
	DefaultTimeout         = 8 * time.Second
	DefaultRequestTimeout  = 20 * time.Second
	DefaultMaxResults      = 20
	DefaultOverfetch       = 1.5
	DefaultTotalMultiplier = 3
	DefaultCacheTTL        = 24 * time.Hour
	DefaultUserAgent       = "sourcefinder/0.1"
)

// WithDefaults returns a copy of c with zero values replaced by defaults.
// RequestTimeout is left alone so callers can disable it explicitly.
func (c SearchConfig) WithDefaults() SearchConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.Overfetch < 1 {
		c.Overfetch = DefaultOverfetch
	}
	if c.TotalMultiplier <= 0 {
		c.TotalMultiplier = DefaultTotalMultiplier
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	return c
}
