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

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,venue,journal," +
	"publicationTypes,citationCount,url"

// SemanticScholarAdapter queries the Semantic Scholar API.
type SemanticScholarAdapter struct {
	Base
	APIKey string
}

// Name returns the adapter identifier.
func (a *SemanticScholarAdapter) Name() string { return SourceSemanticScholar }

// SupportedFields lists the qualifiers Semantic Scholar can serve. Only year
// has a native filter; the others run as a relevance query.
func (a *SemanticScholarAdapter) SupportedFields() []types.FieldQualifier {
	return []types.FieldQualifier{
		types.FieldAny, types.FieldTitle, types.FieldAuthor,
		types.FieldJournal, types.FieldSubject, types.FieldYear,
	}
}

// Search queries the Semantic Scholar API. Failures yield an empty slice.
func (a *SemanticScholarAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	return a.run(ctx, a.Name(), req, func(ctx context.Context) ([]types.Suggestion, error) {
		return a.fetch(ctx, req)
	})
}

func (a *SemanticScholarAdapter) fetch(ctx context.Context, req types.SearchRequest) ([]types.Suggestion, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, errors.New("empty Semantic Scholar query")
	}

	params := url.Values{
		"query":  {q},
		"limit":  {strconv.Itoa(perPage(req.MaxResults, 100))},
		"fields": {semanticFields},
	}
	if req.Offset > 0 {
		params.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.Field == types.FieldYear {
		if y, ok := parseYearQuery(q); ok {
			params.Set("year", strconv.Itoa(y))
		}
	}

	httpReq, err := a.request(ctx, semanticAPIBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}
	if a.APIKey != "" {
		httpReq.Header.Set("x-api-key", a.APIKey)
	}

	var sr semanticResponse
	if err := httputil.GetJSON(a.client(), httpReq, &sr); err != nil {
		return nil, errors.Wrap(err, "Semantic Scholar API request")
	}

	results := make([]types.Suggestion, 0, len(sr.Data))
	for _, paper := range decodeEach[semanticPaper](sr.Data) {
		s := types.Suggestion{
			ID:        paper.PaperID,
			Title:     paper.Title,
			Year:      yearPtr(paper.Year),
			EntryType: semanticEntryType(paper.PublicationTypes),
			Metadata: types.Metadata{
				DOI:      NormalizeDOI(paper.ExternalIDs.DOI),
				ArxivID:  paper.ExternalIDs.ArXiv,
				PMID:     paper.ExternalIDs.PubMed,
				URL:      paper.URL,
				Abstract: paper.Abstract,
			},
		}
		if paper.CitationCount != nil {
			s.Metadata.CitationCount = intPtr(*paper.CitationCount)
		}
		if paper.Journal != nil {
			s.Metadata.Journal = paper.Journal.Name
			s.Metadata.Volume = strings.TrimSpace(paper.Journal.Volume)
			s.Metadata.Pages = strings.TrimSpace(paper.Journal.Pages)
		}
		if s.Metadata.Journal == "" {
			s.Metadata.Journal = paper.Venue
		}
		for _, au := range paper.Authors {
			if name := splitName(au.Name); name.LastName != "" {
				s.Authors = append(s.Authors, name)
			}
		}
		results = append(results, s)
	}
	return results, nil
}

// semanticEntryType maps the first recognized publication type.
func semanticEntryType(pubTypes []string) types.EntryType {
	for _, t := range pubTypes {
		switch t {
		case "JournalArticle", "Review":
			return types.EntryJournalArticle
		case "Conference":
			return types.EntryConferencePaper
		case "Book":
			return types.EntryBook
		case "BookSection":
			return types.EntryBookChapter
		case "Dataset":
			return types.EntryDataset
		}
	}
	return types.EntryOther
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int               `json:"total"`
	Offset int               `json:"offset"`
	Data   []json.RawMessage `json:"data"`
}

type semanticPaper struct {
	PaperID          string              `json:"paperId"`
	Title            string              `json:"title"`
	Abstract         string              `json:"abstract"`
	Year             int                 `json:"year"`
	Venue            string              `json:"venue"`
	URL              string              `json:"url"`
	CitationCount    *int                `json:"citationCount"`
	PublicationTypes []string            `json:"publicationTypes"`
	Journal          *semanticJournal    `json:"journal"`
	Authors          []semanticAuthor    `json:"authors"`
	ExternalIDs      semanticExternalIDs `json:"externalIds"`
}

type semanticJournal struct {
	Name   string `json:"name"`
	Volume string `json:"volume"`
	Pages  string `json:"pages"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	PubMed   string `json:"PubMed"`
	CorpusID int    `json:"CorpusId"`
}
