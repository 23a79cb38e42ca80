// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/sourcefinder/internal/httputil"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivAdapter queries the arXiv API.
type ArxivAdapter struct {
	Base
}

// Name returns the adapter identifier.
func (a *ArxivAdapter) Name() string { return SourceArxiv }

// SupportedFields lists the qualifiers arXiv can serve. It has no
// publisher or date search.
func (a *ArxivAdapter) SupportedFields() []types.FieldQualifier {
	return []types.FieldQualifier{
		types.FieldAny, types.FieldTitle, types.FieldAuthor,
		types.FieldJournal, types.FieldSubject,
	}
}

// Search queries the arXiv API. Failures yield an empty slice.
func (a *ArxivAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	return a.run(ctx, a.Name(), req, func(ctx context.Context) ([]types.Suggestion, error) {
		return a.fetch(ctx, req)
	})
}

func (a *ArxivAdapter) fetch(ctx context.Context, req types.SearchRequest) ([]types.Suggestion, error) {
	q := buildArxivQuery(req)
	if q == "" {
		return nil, errors.New("empty arXiv query")
	}

	params := url.Values{
		"search_query": {q},
		"start":        {strconv.Itoa(max(req.Offset, 0))},
		"max_results":  {strconv.Itoa(perPage(req.MaxResults, 2000))},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	httpReq, err := a.request(ctx, arxivAPIBase+"?"+params.Encode(), "application/atom+xml")
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := httputil.GetXML(a.client(), httpReq, &feed); err != nil {
		return nil, errors.Wrap(err, "arXiv API request")
	}

	results := make([]types.Suggestion, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		s := types.Suggestion{
			ID:        arxivID,
			Title:     strings.Join(strings.Fields(entry.Title), " "),
			EntryType: types.EntryPreprint,
			Metadata: types.Metadata{
				ArxivID:  arxivID,
				DOI:      NormalizeDOI(entry.DOI),
				URL:      strings.TrimSpace(entry.ID),
				Abstract: strings.Join(strings.Fields(entry.Summary), " "),
				Journal:  strings.TrimSpace(entry.JournalRef),
			},
		}
		// A journal reference means the preprint has been published.
		if s.Metadata.Journal != "" {
			s.EntryType = types.EntryJournalArticle
		}
		for _, au := range entry.Authors {
			if name := splitName(au.Name); name.LastName != "" {
				s.Authors = append(s.Authors, name)
			}
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			s.Year = yearPtr(t.Year())
		}
		results = append(results, s)
	}
	return results, nil
}

// buildArxivQuery constructs the search_query parameter. Every query term
// is required, under the field prefix that matches the qualifier.
func buildArxivQuery(req types.SearchRequest) string {
	prefix := "all:"
	switch req.Field {
	case types.FieldTitle:
		prefix = "ti:"
	case types.FieldAuthor:
		prefix = "au:"
	case types.FieldJournal:
		prefix = "jr:"
	case types.FieldSubject:
		prefix = "abs:"
	}

	terms := queryTerms(req.Query)
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, prefix+t)
	}
	return strings.Join(parts, " AND ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	Authors    []arxivAuthor `xml:"author"`
	DOI        string        `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef string        `xml:"http://arxiv.org/schemas/atom journal_ref"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" becomes "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
