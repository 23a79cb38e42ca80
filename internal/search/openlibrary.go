// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/sourcefinder/internal/httputil"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// openLibrarySearchBase is the Open Library search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openLibrarySearchBase = "https://openlibrary.org/search.json"

const openLibraryFields = "key,title,subtitle,author_name,first_publish_year,isbn,publisher,language,edition_count"

// OpenLibraryAdapter queries the Open Library book catalog.
type OpenLibraryAdapter struct {
	Base
}

// Name returns the adapter identifier.
func (a *OpenLibraryAdapter) Name() string { return SourceOpenLibrary }

// SupportedFields lists the qualifiers Open Library can serve. It has no
// journal data.
func (a *OpenLibraryAdapter) SupportedFields() []types.FieldQualifier {
	return []types.FieldQualifier{
		types.FieldAny, types.FieldTitle, types.FieldAuthor,
		types.FieldPublisher, types.FieldSubject, types.FieldYear,
	}
}

// Search queries Open Library. Failures yield an empty slice.
func (a *OpenLibraryAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	return a.run(ctx, a.Name(), req, func(ctx context.Context) ([]types.Suggestion, error) {
		return a.fetch(ctx, req)
	})
}

func (a *OpenLibraryAdapter) fetch(ctx context.Context, req types.SearchRequest) ([]types.Suggestion, error) {
	params := buildOpenLibraryParams(req)
	if params == nil {
		return nil, errors.New("empty Open Library query")
	}
	params.Set("limit", strconv.Itoa(perPage(req.MaxResults, 100)))
	if req.Offset > 0 {
		params.Set("offset", strconv.Itoa(req.Offset))
	}
	params.Set("fields", openLibraryFields)

	httpReq, err := a.request(ctx, openLibrarySearchBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var olr openLibraryResponse
	if err := httputil.GetJSON(a.client(), httpReq, &olr); err != nil {
		return nil, errors.Wrap(err, "Open Library API request")
	}

	results := make([]types.Suggestion, 0, len(olr.Docs))
	for _, doc := range decodeEach[openLibraryDoc](olr.Docs) {
		title := doc.Title
		if doc.Subtitle != "" {
			title += ": " + doc.Subtitle
		}
		s := types.Suggestion{
			ID:        doc.Key,
			Title:     title,
			EntryType: types.EntryBook,
			Year:      yearPtr(doc.FirstPublishYear),
			Metadata: types.Metadata{
				ISBN:      preferISBN13(doc.ISBN),
				Publisher: firstOf(doc.Publisher),
				Language:  firstOf(doc.Language),
			},
		}
		if doc.Key != "" {
			s.Metadata.URL = "https://openlibrary.org" + doc.Key
		}
		if doc.EditionCount > 0 {
			s.Metadata.Extra = map[string]string{"edition_count": strconv.Itoa(doc.EditionCount)}
		}
		for _, name := range doc.AuthorName {
			if au := splitName(name); au.LastName != "" {
				s.Authors = append(s.Authors, au)
			}
		}
		results = append(results, s)
	}
	return results, nil
}

// buildOpenLibraryParams maps the qualifier onto Open Library's field
// parameters. It returns nil for an empty query.
func buildOpenLibraryParams(req types.SearchRequest) url.Values {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil
	}
	params := url.Values{}
	switch req.Field {
	case types.FieldTitle:
		params.Set("title", q)
	case types.FieldAuthor:
		params.Set("author", q)
	case types.FieldPublisher:
		params.Set("publisher", q)
	case types.FieldSubject:
		params.Set("subject", q)
	case types.FieldYear:
		if y, ok := parseYearQuery(q); ok {
			params.Set("q", "first_publish_year:"+strconv.Itoa(y))
			params.Set("sort", "editions")
		} else {
			params.Set("q", q)
		}
	default:
		params.Set("q", q)
	}
	return params
}

// preferISBN13 returns the first 13-digit ISBN, or the first ISBN of any
// length when none has 13 digits.
func preferISBN13(isbns []string) string {
	for _, isbn := range isbns {
		if len(strings.TrimSpace(isbn)) == 13 {
			return strings.TrimSpace(isbn)
		}
	}
	return firstOf(isbns)
}

// Open Library JSON structures.
type openLibraryResponse struct {
	NumFound int               `json:"numFound"`
	Docs     []json.RawMessage `json:"docs"`
}

type openLibraryDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Publisher        []string `json:"publisher"`
	Language         []string `json:"language"`
	EditionCount     int      `json:"edition_count"`
}
