// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pdiddy/sourcefinder/internal/httputil"
	"github.com/pdiddy/sourcefinder/internal/metrics"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

const tracerName = "github.com/pdiddy/sourcefinder/internal/search"

// Adapter searches a single metadata provider. Implementations never return
// an error: any failure yields an empty slice.
type Adapter interface {
	Name() string
	SupportedFields() []types.FieldQualifier
	Search(ctx context.Context, req types.SearchRequest) []types.Suggestion
}

// Supports reports whether a lists field among its supported qualifiers.
func Supports(a Adapter, field types.FieldQualifier) bool {
	for _, f := range a.SupportedFields() {
		if f == field {
			return true
		}
	}
	return false
}

// Base carries the HTTP plumbing shared by every provider adapter.
type Base struct {
	// Client performs outbound calls. Nil means http.DefaultClient.
	Client httputil.Doer

	// HTTP holds the per-call timeout and User-Agent.
	HTTP types.HTTPConfig

	// Logger receives absorbed failures when the context carries no logger.
	Logger zerolog.Logger

	// Metrics counts absorbed failures. May be nil.
	Metrics *metrics.Metrics
}

func (b Base) client() httputil.Doer {
	if b.Client == nil {
		return http.DefaultClient
	}
	return b.Client
}

func (b Base) timeout() time.Duration {
	if b.HTTP.Timeout <= 0 {
		return types.DefaultTimeout
	}
	return b.HTTP.Timeout
}

func (b Base) request(ctx context.Context, rawURL, accept string) (*http.Request, error) {
	return httputil.NewRequest(ctx, rawURL, b.HTTP.UserAgent, accept)
}

func (b Base) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &b.Logger
}

// run executes fetch under the per-call timeout and converts every failure,
// including a panic, into an empty result. Records without a title are
// dropped and Source is stamped with name.
func (b Base) run(ctx context.Context, name string, req types.SearchRequest,
	fetch func(ctx context.Context) ([]types.Suggestion, error)) (out []types.Suggestion) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "adapter.search",
		trace.WithAttributes(
			attribute.String("adapter.name", name),
			attribute.String("search.field", string(req.Field)),
			attribute.Int("search.max_results", req.MaxResults),
		))
	defer span.End()

	log := b.logger(ctx)

	defer func() {
		if r := recover(); r != nil {
			err := errors.Newf("panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "adapter panicked")
			log.Error().Str("adapter", name).Err(err).Msg("adapter panicked")
			b.Metrics.AdapterFailed(name)
			out = nil
		}
	}()

	results, err := fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "adapter search failed")
		log.Warn().Str("adapter", name).Err(err).Msg("adapter search failed")
		b.Metrics.AdapterFailed(name)
		return nil
	}

	out = results[:0]
	for _, s := range results {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			continue
		}
		s.Source = name
		out = append(out, s)
	}
	span.SetAttributes(attribute.Int("adapter.suggestions", len(out)))
	return out
}

// perPage clamps a requested page size to the provider's limits.
func perPage(n, max int) int {
	if n <= 0 {
		n = types.DefaultMaxResults
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

// parseYearQuery returns the year when q is a plain four-digit year.
func parseYearQuery(q string) (int, bool) {
	q = strings.TrimSpace(q)
	if len(q) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(q)
	if err != nil || y < 1000 {
		return 0, false
	}
	return y, true
}

// extractYear scans s and returns the first plausible four-digit year.
func extractYear(s string) int {
	s = strings.TrimSpace(s)
	for i := 0; i+4 <= len(s); i++ {
		y, err := strconv.Atoi(s[i : i+4])
		if err != nil {
			continue
		}
		if y >= 1000 && y <= time.Now().Year()+1 {
			return y
		}
	}
	return 0
}

// yearPtr returns a pointer to y, or nil for unknown years.
func yearPtr(y int) *int {
	if y <= 0 {
		return nil
	}
	return &y
}

func intPtr(n int) *int { return &n }

// splitName turns a display name into an Author. It accepts
// "Family, Given" and "Given Family".
func splitName(name string) types.Author {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return types.Author{}
	}
	if i := strings.Index(name, ","); i >= 0 {
		return types.Author{
			LastName:  strings.TrimSpace(name[:i]),
			FirstName: strings.TrimSpace(name[i+1:]),
		}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return types.Author{LastName: name}
	}
	return types.Author{FirstName: name[:idx], LastName: name[idx+1:]}
}

// firstOf returns the first non-empty trimmed string in vs.
// decodeEach unmarshals each raw record into T. Records that fail to decode
// are skipped so one bad entry does not cost the rest of the batch.
func decodeEach[T any](raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func firstOf(vs []string) string {
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// stripMarkup removes XML/HTML tags such as the JATS markup Crossref
// embeds in abstracts.
func stripMarkup(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// queryTerms splits q into whitespace-separated terms with surrounding
// punctuation removed.
func queryTerms(q string) []string {
	var terms []string
	for _, f := range strings.Fields(q) {
		f = strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}
