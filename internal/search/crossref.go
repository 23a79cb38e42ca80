// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/sourcefinder/internal/httputil"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

const crossrefSelect = "DOI,title,author,issued,container-title,volume,issue,page,publisher," +
	"ISBN,ISSN,is-referenced-by-count,language,URL,abstract,type"

// CrossrefAdapter queries the Crossref REST API, the citation index with the
// richest schema in the registry.
type CrossrefAdapter struct {
	Base

	// Mailto is sent for polite pool access.
	Mailto string
}

// Name returns the adapter identifier.
func (a *CrossrefAdapter) Name() string { return SourceCrossref }

// SupportedFields reports every field: Crossref filters natively on all of them.
func (a *CrossrefAdapter) SupportedFields() []types.FieldQualifier { return types.AllFields }

// Search queries Crossref. Failures yield an empty slice.
func (a *CrossrefAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	return a.run(ctx, a.Name(), req, func(ctx context.Context) ([]types.Suggestion, error) {
		return a.fetch(ctx, req)
	})
}

func (a *CrossrefAdapter) fetch(ctx context.Context, req types.SearchRequest) ([]types.Suggestion, error) {
	params := buildCrossrefParams(req)
	if params == nil {
		return nil, errors.New("empty Crossref query")
	}
	params.Set("rows", strconv.Itoa(perPage(req.MaxResults, 1000)))
	if req.Offset > 0 {
		params.Set("offset", strconv.Itoa(req.Offset))
	}
	params.Set("select", crossrefSelect)
	if a.Mailto != "" {
		params.Set("mailto", a.Mailto)
	}

	httpReq, err := a.request(ctx, crossrefAPIBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var cr crossrefResponse
	if err := httputil.GetJSON(a.client(), httpReq, &cr); err != nil {
		return nil, errors.Wrap(err, "Crossref API request")
	}

	results := make([]types.Suggestion, 0, len(cr.Message.Items))
	for _, item := range decodeEach[crossrefItem](cr.Message.Items) {
		title := firstOf(item.Title)
		if title == "" {
			continue
		}
		s := types.Suggestion{
			ID:        item.DOI,
			Title:     title,
			EntryType: crossrefEntryType(item.Type),
			Year:      yearPtr(item.Issued.year()),
			Metadata: types.Metadata{
				DOI:           item.DOI,
				ISBN:          firstOf(item.ISBN),
				ISSN:          firstOf(item.ISSN),
				URL:           item.URL,
				Journal:       firstOf(item.ContainerTitle),
				Volume:        item.Volume,
				Issue:         item.Issue,
				Pages:         item.Page,
				Publisher:     item.Publisher,
				Language:      item.Language,
				Abstract:      stripMarkup(item.Abstract),
				CitationCount: intPtr(item.ReferencedByCount),
			},
		}
		// Books carry their series or imprint in container-title.
		if s.EntryType == types.EntryBook {
			s.Metadata.Journal = ""
		}
		for _, au := range item.Author {
			switch {
			case strings.TrimSpace(au.Family) != "":
				s.Authors = append(s.Authors, types.Author{
					FirstName: strings.TrimSpace(au.Given),
					LastName:  strings.TrimSpace(au.Family),
				})
			case strings.TrimSpace(au.Name) != "":
				s.Authors = append(s.Authors, types.Author{LastName: strings.TrimSpace(au.Name)})
			}
		}
		results = append(results, s)
	}
	return results, nil
}

// buildCrossrefParams maps the field qualifier onto Crossref's field
// queries. It returns nil for an empty query.
func buildCrossrefParams(req types.SearchRequest) url.Values {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil
	}
	params := url.Values{}
	switch req.Field {
	case types.FieldTitle:
		params.Set("query.bibliographic", q)
	case types.FieldAuthor:
		params.Set("query.author", q)
	case types.FieldJournal:
		params.Set("query.container-title", q)
	case types.FieldPublisher:
		params.Set("query.publisher-name", q)
	case types.FieldYear:
		if y, ok := parseYearQuery(q); ok {
			params.Set("filter", fmt.Sprintf("from-pub-date:%d-01-01,until-pub-date:%d-12-31", y, y))
			params.Set("sort", "is-referenced-by-count")
			params.Set("order", "desc")
		} else {
			params.Set("query", q)
		}
	default:
		params.Set("query", q)
	}
	return params
}

func crossrefEntryType(t string) types.EntryType {
	switch t {
	case "journal-article":
		return types.EntryJournalArticle
	case "book", "monograph", "edited-book", "reference-book", "book-set":
		return types.EntryBook
	case "book-chapter", "book-section", "book-part", "reference-entry":
		return types.EntryBookChapter
	case "proceedings-article":
		return types.EntryConferencePaper
	case "dissertation":
		return types.EntryThesis
	case "report", "report-component":
		return types.EntryReport
	case "dataset":
		return types.EntryDataset
	case "posted-content":
		return types.EntryPreprint
	default:
		return types.EntryOther
	}
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Status  string          `json:"status"`
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	TotalResults int               `json:"total-results"`
	Items        []json.RawMessage `json:"items"`
}

type crossrefItem struct {
	DOI               string           `json:"DOI"`
	Title             []string         `json:"title"`
	Author            []crossrefAuthor `json:"author"`
	Issued            crossrefDate     `json:"issued"`
	ContainerTitle    []string         `json:"container-title"`
	Volume            string           `json:"volume"`
	Issue             string           `json:"issue"`
	Page              string           `json:"page"`
	Publisher         string           `json:"publisher"`
	ISBN              []string         `json:"ISBN"`
	ISSN              []string         `json:"ISSN"`
	ReferencedByCount int              `json:"is-referenced-by-count"`
	Language          string           `json:"language"`
	URL               string           `json:"URL"`
	Abstract          string           `json:"abstract"`
	Type              string           `json:"type"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d crossrefDate) year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}
