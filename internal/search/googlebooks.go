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

// googleBooksAPIBase is the Google Books volumes endpoint. Declared as a var
// so tests can substitute an httptest server.
var googleBooksAPIBase = "https://www.googleapis.com/books/v1/volumes"

// GoogleBooksAdapter queries the Google Books volumes API.
type GoogleBooksAdapter struct {
	Base

	// APIKey is optional; unauthenticated calls share a low quota.
	APIKey string
}

// Name returns the adapter identifier.
func (a *GoogleBooksAdapter) Name() string { return SourceGoogleBooks }

// SupportedFields lists the qualifiers with a Google Books search keyword.
func (a *GoogleBooksAdapter) SupportedFields() []types.FieldQualifier {
	return []types.FieldQualifier{
		types.FieldAny, types.FieldTitle, types.FieldAuthor,
		types.FieldPublisher, types.FieldSubject,
	}
}

// Search queries Google Books. Failures yield an empty slice.
func (a *GoogleBooksAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	return a.run(ctx, a.Name(), req, func(ctx context.Context) ([]types.Suggestion, error) {
		return a.fetch(ctx, req)
	})
}

func (a *GoogleBooksAdapter) fetch(ctx context.Context, req types.SearchRequest) ([]types.Suggestion, error) {
	q := buildGoogleBooksQuery(req)
	if q == "" {
		return nil, errors.New("empty Google Books query")
	}

	params := url.Values{
		"q":          {q},
		"maxResults": {strconv.Itoa(perPage(req.MaxResults, 40))},
		"printType":  {"books"},
	}
	if req.Offset > 0 {
		params.Set("startIndex", strconv.Itoa(req.Offset))
	}
	if a.APIKey != "" {
		params.Set("key", a.APIKey)
	}

	httpReq, err := a.request(ctx, googleBooksAPIBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var gbr googleBooksResponse
	if err := httputil.GetJSON(a.client(), httpReq, &gbr); err != nil {
		return nil, errors.Wrap(err, "Google Books API request")
	}

	results := make([]types.Suggestion, 0, len(gbr.Items))
	for _, item := range decodeEach[googleBooksItem](gbr.Items) {
		info := item.VolumeInfo
		title := info.Title
		if info.Subtitle != "" {
			title += ": " + info.Subtitle
		}
		s := types.Suggestion{
			ID:        item.ID,
			Title:     title,
			EntryType: types.EntryBook,
			Year:      yearPtr(extractYear(info.PublishedDate)),
			Metadata: types.Metadata{
				ISBN:      info.isbn(),
				Publisher: info.Publisher,
				Language:  info.Language,
				Abstract:  stripMarkup(info.Description),
				URL:       info.InfoLink,
			},
		}
		if info.PageCount > 0 {
			s.Metadata.Extra = map[string]string{"page_count": strconv.Itoa(info.PageCount)}
		}
		for _, name := range info.Authors {
			if au := splitName(name); au.LastName != "" {
				s.Authors = append(s.Authors, au)
			}
		}
		results = append(results, s)
	}
	return results, nil
}

// buildGoogleBooksQuery prefixes every term with the keyword for the field.
func buildGoogleBooksQuery(req types.SearchRequest) string {
	prefix := ""
	switch req.Field {
	case types.FieldTitle:
		prefix = "intitle:"
	case types.FieldAuthor:
		prefix = "inauthor:"
	case types.FieldPublisher:
		prefix = "inpublisher:"
	case types.FieldSubject:
		prefix = "subject:"
	}
	terms := queryTerms(req.Query)
	for i, t := range terms {
		terms[i] = prefix + t
	}
	return strings.Join(terms, " ")
}

// Google Books JSON structures.
type googleBooksResponse struct {
	TotalItems int               `json:"totalItems"`
	Items      []json.RawMessage `json:"items"`
}

type googleBooksItem struct {
	ID         string                `json:"id"`
	VolumeInfo googleBooksVolumeInfo `json:"volumeInfo"`
}

type googleBooksVolumeInfo struct {
	Title               string                  `json:"title"`
	Subtitle            string                  `json:"subtitle"`
	Authors             []string                `json:"authors"`
	Publisher           string                  `json:"publisher"`
	PublishedDate       string                  `json:"publishedDate"`
	Description         string                  `json:"description"`
	PageCount           int                     `json:"pageCount"`
	Language            string                  `json:"language"`
	InfoLink            string                  `json:"infoLink"`
	IndustryIdentifiers []googleBooksIdentifier `json:"industryIdentifiers"`
}

type googleBooksIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// isbn returns the ISBN-13 when present, otherwise the ISBN-10.
func (v googleBooksVolumeInfo) isbn() string {
	var isbn10 string
	for _, id := range v.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		}
	}
	return isbn10
}
