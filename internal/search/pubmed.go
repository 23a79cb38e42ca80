// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/sourcefinder/internal/httputil"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// pubmedEutilsBase is the NCBI E-utilities root. Declared as a var so tests
// can substitute an httptest server.
var pubmedEutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedAdapter queries PubMed via E-utilities: esearch finds PMIDs, then
// esummary fetches the records in one call.
type PubMedAdapter struct {
	Base

	// APIKey raises the NCBI rate limit. Optional.
	APIKey string

	// Email identifies the caller to NCBI. Optional.
	Email string
}

// Name returns the adapter identifier.
func (a *PubMedAdapter) Name() string { return SourcePubMed }

// SupportedFields lists the qualifiers with a PubMed field tag.
func (a *PubMedAdapter) SupportedFields() []types.FieldQualifier {
	return []types.FieldQualifier{
		types.FieldAny, types.FieldTitle, types.FieldAuthor,
		types.FieldJournal, types.FieldSubject, types.FieldYear,
	}
}

// Search queries PubMed. Failures yield an empty slice.
func (a *PubMedAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	return a.run(ctx, a.Name(), req, func(ctx context.Context) ([]types.Suggestion, error) {
		return a.fetch(ctx, req)
	})
}

func (a *PubMedAdapter) fetch(ctx context.Context, req types.SearchRequest) ([]types.Suggestion, error) {
	term := buildPubMedTerm(req)
	if term == "" {
		return nil, errors.New("empty PubMed query")
	}

	ids, err := a.esearch(ctx, term, perPage(req.MaxResults, 200), req.Offset)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return a.esummary(ctx, ids)
}

func (a *PubMedAdapter) params() url.Values {
	v := url.Values{"db": {"pubmed"}, "retmode": {"json"}}
	if a.APIKey != "" {
		v.Set("api_key", a.APIKey)
	}
	if a.Email != "" {
		v.Set("email", a.Email)
	}
	return v
}

func (a *PubMedAdapter) esearch(ctx context.Context, term string, retmax, retstart int) ([]string, error) {
	params := a.params()
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(retmax))
	if retstart > 0 {
		params.Set("retstart", strconv.Itoa(retstart))
	}

	httpReq, err := a.request(ctx, pubmedEutilsBase+"/esearch.fcgi?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}
	var sr pubmedSearchResponse
	if err := httputil.GetJSON(a.client(), httpReq, &sr); err != nil {
		return nil, errors.Wrap(err, "PubMed esearch")
	}
	return sr.Result.IDList, nil
}

func (a *PubMedAdapter) esummary(ctx context.Context, ids []string) ([]types.Suggestion, error) {
	params := a.params()
	params.Set("id", strings.Join(ids, ","))

	httpReq, err := a.request(ctx, pubmedEutilsBase+"/esummary.fcgi?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}
	var sr pubmedSummaryResponse
	if err := httputil.GetJSON(a.client(), httpReq, &sr); err != nil {
		return nil, errors.Wrap(err, "PubMed esummary")
	}

	// The result object mixes a "uids" list with one object per PMID.
	var order []string
	if raw, ok := sr.Result["uids"]; ok {
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, errors.Wrap(err, "decoding PubMed uids")
		}
	} else {
		order = ids
	}

	results := make([]types.Suggestion, 0, len(order))
	for _, uid := range order {
		raw, ok := sr.Result[uid]
		if !ok {
			continue
		}
		var doc pubmedDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if doc.Error != "" {
			continue
		}
		results = append(results, doc.suggestion(uid))
	}
	return results, nil
}

func (d pubmedDoc) suggestion(uid string) types.Suggestion {
	s := types.Suggestion{
		ID:        uid,
		Title:     strings.TrimSuffix(strings.TrimSpace(d.Title), "."),
		Year:      yearPtr(extractYear(d.PubDate)),
		EntryType: pubmedEntryType(d.PubType),
		Metadata: types.Metadata{
			PMID:    uid,
			Journal: d.FullJournalName,
			Volume:  d.Volume,
			Issue:   d.Issue,
			Pages:   d.Pages,
			ISSN:    d.ISSN,
			URL:     "https://pubmed.ncbi.nlm.nih.gov/" + uid + "/",
		},
	}
	if s.Metadata.Journal == "" {
		s.Metadata.Journal = d.Source
	}
	if len(d.Lang) > 0 {
		s.Metadata.Language = d.Lang[0]
	}
	for _, id := range d.ArticleIDs {
		if id.IDType == "doi" {
			s.Metadata.DOI = NormalizeDOI(id.Value)
		}
	}
	for _, au := range d.Authors {
		if au.AuthType != "" && au.AuthType != "Author" {
			continue
		}
		if name := pubmedAuthor(au.Name); name.LastName != "" {
			s.Authors = append(s.Authors, name)
		}
	}
	return s
}

// buildPubMedTerm applies PubMed field tags. Title words are tagged
// individually so word order does not matter.
func buildPubMedTerm(req types.SearchRequest) string {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return ""
	}
	switch req.Field {
	case types.FieldTitle:
		terms := queryTerms(q)
		for i, t := range terms {
			terms[i] = t + "[ti]"
		}
		return strings.Join(terms, " AND ")
	case types.FieldAuthor:
		return q + "[au]"
	case types.FieldJournal:
		return q + "[ta]"
	case types.FieldSubject:
		return q + "[mh]"
	case types.FieldYear:
		if y, ok := parseYearQuery(q); ok {
			return strconv.Itoa(y) + "[dp]"
		}
		return q
	default:
		return q
	}
}

// pubmedAuthor parses MEDLINE display names such as "Caro RA", where the
// trailing token holds the initials.
func pubmedAuthor(name string) types.Author {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return splitName(name)
	}
	initials := fields[len(fields)-1]
	if !isInitials(initials) {
		return splitName(name)
	}
	return types.Author{
		FirstName: initials,
		LastName:  strings.Join(fields[:len(fields)-1], " "),
	}
}

func isInitials(s string) bool {
	if s == "" || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func pubmedEntryType(pubTypes []string) types.EntryType {
	for _, t := range pubTypes {
		switch t {
		case "Journal Article", "Review", "Letter", "Editorial", "Comment":
			return types.EntryJournalArticle
		case "Congress":
			return types.EntryConferencePaper
		case "Preprint":
			return types.EntryPreprint
		case "Dataset":
			return types.EntryDataset
		}
	}
	return types.EntryJournalArticle
}

// E-utilities JSON structures.
type pubmedSearchResponse struct {
	Result pubmedSearchResult `json:"esearchresult"`
}

type pubmedSearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedDoc struct {
	Title           string            `json:"title"`
	PubDate         string            `json:"pubdate"`
	Source          string            `json:"source"`
	FullJournalName string            `json:"fulljournalname"`
	Volume          string            `json:"volume"`
	Issue           string            `json:"issue"`
	Pages           string            `json:"pages"`
	ISSN            string            `json:"issn"`
	Lang            []string          `json:"lang"`
	PubType         []string          `json:"pubtype"`
	Authors         []pubmedAuthorRec `json:"authors"`
	ArticleIDs      []pubmedArticleID `json:"articleids"`
	Error           string            `json:"error"`
}

type pubmedAuthorRec struct {
	Name     string `json:"name"`
	AuthType string `json:"authtype"`
}

type pubmedArticleID struct {
	IDType string `json:"idtype"`
	Value  string `json:"value"`
}
