// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/sourcefinder/internal/httputil"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlexAdapter queries the OpenAlex API.
type OpenAlexAdapter struct {
	Base

	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the adapter identifier.
func (a *OpenAlexAdapter) Name() string { return SourceOpenAlex }

// SupportedFields reports every field.
func (a *OpenAlexAdapter) SupportedFields() []types.FieldQualifier { return types.AllFields }

// Search queries the OpenAlex API. Failures yield an empty slice.
func (a *OpenAlexAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	return a.run(ctx, a.Name(), req, func(ctx context.Context) ([]types.Suggestion, error) {
		return a.fetch(ctx, req)
	})
}

func (a *OpenAlexAdapter) fetch(ctx context.Context, req types.SearchRequest) ([]types.Suggestion, error) {
	params := buildOpenAlexParams(req)
	if params == nil {
		return nil, errors.New("empty OpenAlex query")
	}

	per := perPage(req.MaxResults, 200)
	params.Set("per_page", strconv.Itoa(per))
	params.Set("page", strconv.Itoa(req.Offset/per+1))
	if a.Email != "" {
		params.Set("mailto", a.Email)
	}

	httpReq, err := a.request(ctx, openAlexSearchBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var oar openAlexResponse
	if err := httputil.GetJSON(a.client(), httpReq, &oar); err != nil {
		return nil, errors.Wrap(err, "OpenAlex API request")
	}

	results := make([]types.Suggestion, 0, len(oar.Results))
	for _, work := range decodeEach[openAlexWork](oar.Results) {
		title := work.Title
		if title == "" {
			title = work.DisplayName
		}
		s := types.Suggestion{
			ID:        work.ID,
			Title:     title,
			EntryType: openAlexEntryType(work.Type),
			Year:      yearPtr(work.PublicationYear),
			Metadata: types.Metadata{
				DOI:           NormalizeDOI(work.DOI),
				Language:      work.Language,
				Abstract:      reconstructAbstract(work.AbstractInvertedIndex),
				CitationCount: intPtr(work.CitedByCount),
				Volume:        work.Biblio.Volume,
				Issue:         work.Biblio.Issue,
				Pages:         work.Biblio.pages(),
				URL:           work.PrimaryLocation.LandingPageURL,
			},
		}
		if src := work.PrimaryLocation.Source; src != nil {
			if src.Type == "journal" || src.Type == "conference" {
				s.Metadata.Journal = src.DisplayName
			}
			s.Metadata.ISSN = src.ISSNL
			s.Metadata.Publisher = src.HostOrganizationName
		}
		if s.Metadata.URL == "" && work.OpenAccess.OAURL != "" {
			s.Metadata.URL = work.OpenAccess.OAURL
		}
		for _, authorship := range work.Authorships {
			if au := splitName(authorship.Author.DisplayName); au.LastName != "" {
				s.Authors = append(s.Authors, au)
			}
		}
		results = append(results, s)
	}
	return results, nil
}

// buildOpenAlexParams selects the OpenAlex search or filter parameter for
// the field qualifier. It returns nil for an empty query.
func buildOpenAlexParams(req types.SearchRequest) url.Values {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil
	}
	// Filter values are comma-separated lists.
	fq := strings.ReplaceAll(q, ",", " ")

	params := url.Values{}
	switch req.Field {
	case types.FieldTitle:
		params.Set("filter", "title.search:"+fq)
	case types.FieldAuthor:
		params.Set("filter", "raw_author_name.search:"+fq)
	case types.FieldJournal:
		params.Set("filter", "primary_location.source.display_name.search:"+fq)
	case types.FieldPublisher:
		params.Set("filter", "primary_location.source.host_organization_name.search:"+fq)
	case types.FieldSubject:
		params.Set("filter", "concepts.display_name.search:"+fq)
		params.Set("sort", "cited_by_count:desc")
	case types.FieldYear:
		if y, ok := parseYearQuery(q); ok {
			params.Set("filter", "publication_year:"+strconv.Itoa(y))
			params.Set("sort", "cited_by_count:desc")
		} else {
			params.Set("search", q)
		}
	default:
		params.Set("search", q)
	}
	return params
}

func openAlexEntryType(t string) types.EntryType {
	switch t {
	case "article", "review", "letter", "editorial":
		return types.EntryJournalArticle
	case "book":
		return types.EntryBook
	case "book-chapter":
		return types.EntryBookChapter
	case "dissertation":
		return types.EntryThesis
	case "report":
		return types.EntryReport
	case "dataset":
		return types.EntryDataset
	case "preprint":
		return types.EntryPreprint
	case "proceedings-article":
		return types.EntryConferencePaper
	default:
		return types.EntryOther
	}
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta      `json:"meta"`
	Results []json.RawMessage `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DisplayName           string               `json:"display_name"`
	DOI                   string               `json:"doi"`
	Type                  string               `json:"type"`
	Language              string               `json:"language"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
	Biblio                openAlexBiblio       `json:"biblio"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	LandingPageURL string          `json:"landing_page_url"`
	Source         *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName          string `json:"display_name"`
	ISSNL                string `json:"issn_l"`
	HostOrganizationName string `json:"host_organization_name"`
	Type                 string `json:"type"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

func (b openAlexBiblio) pages() string {
	switch {
	case b.FirstPage != "" && b.LastPage != "" && b.FirstPage != b.LastPage:
		return b.FirstPage + "-" + b.LastPage
	default:
		return b.FirstPage
	}
}

type openAlexOpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}
