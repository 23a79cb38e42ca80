// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/sourcefinder/internal/httputil"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

// patentsViewSearchBase is the PatentsView patent search endpoint. Declared
// as a var so tests can substitute an httptest server.
var patentsViewSearchBase = "https://search.patentsview.org/api/v1/patent/"

// patentsViewFields lists the fields requested from the API.
const patentsViewFields = `["patent_id","patent_title","patent_abstract","patent_date","patent_type",` +
	`"patent_num_times_cited_by_us_patents","inventors.inventor_name_first","inventors.inventor_name_last",` +
	`"assignees.assignee_organization"]`

// PatentsViewAdapter queries the USPTO PatentsView API. It requires an API
// key and is only registered when one is configured.
type PatentsViewAdapter struct {
	Base
	APIKey string
}

// Name returns the adapter identifier.
func (a *PatentsViewAdapter) Name() string { return SourcePatentsView }

// SupportedFields lists the qualifiers PatentsView can serve.
func (a *PatentsViewAdapter) SupportedFields() []types.FieldQualifier {
	return []types.FieldQualifier{types.FieldAny, types.FieldTitle, types.FieldAuthor, types.FieldYear}
}

// Search queries the PatentsView API. Failures yield an empty slice.
func (a *PatentsViewAdapter) Search(ctx context.Context, req types.SearchRequest) []types.Suggestion {
	return a.run(ctx, a.Name(), req, func(ctx context.Context) ([]types.Suggestion, error) {
		return a.fetch(ctx, req)
	})
}

func (a *PatentsViewAdapter) fetch(ctx context.Context, req types.SearchRequest) ([]types.Suggestion, error) {
	// The API paginates with a cursor, not an offset. Later pages come
	// from the other providers.
	if req.Offset > 0 {
		return nil, nil
	}

	q, err := buildPatentsViewQuery(req)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"q": {q},
		"f": {patentsViewFields},
		"o": {fmt.Sprintf(`{"size":%d}`, perPage(req.MaxResults, 1000))},
	}

	httpReq, err := a.request(ctx, patentsViewSearchBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}
	if a.APIKey != "" {
		httpReq.Header.Set("X-Api-Key", a.APIKey)
	}

	var pvr patentsViewResponse
	if err := httputil.GetJSON(a.client(), httpReq, &pvr); err != nil {
		return nil, errors.Wrap(err, "PatentsView API request")
	}

	results := make([]types.Suggestion, 0, len(pvr.Patents))
	for _, patent := range decodeEach[patentsViewPatent](pvr.Patents) {
		patentID := "US" + patent.PatentID
		s := types.Suggestion{
			ID:        patentID,
			Title:     patent.PatentTitle,
			EntryType: types.EntryPatent,
			Year:      yearPtr(extractYear(patent.PatentDate)),
			Metadata: types.Metadata{
				Abstract:      patent.PatentAbstract,
				URL:           "https://patents.google.com/patent/" + patentID,
				CitationCount: intPtr(patent.TimesCited),
				Extra:         map[string]string{"patent_number": patentID},
			},
		}
		if patent.PatentType != "" {
			s.Metadata.Extra["patent_type"] = patent.PatentType
		}
		for _, as := range patent.Assignees {
			if org := strings.TrimSpace(as.Organization); org != "" {
				s.Metadata.Publisher = org
				break
			}
		}
		for _, inv := range patent.Inventors {
			if last := strings.TrimSpace(inv.InventorNameLast); last != "" {
				s.Authors = append(s.Authors, types.Author{
					FirstName: strings.TrimSpace(inv.InventorNameFirst),
					LastName:  last,
				})
			}
		}
		results = append(results, s)
	}
	return results, nil
}

// buildPatentsViewQuery constructs the JSON query parameter using
// PatentsView operators.
func buildPatentsViewQuery(req types.SearchRequest) (string, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return "", errors.New("empty PatentsView query")
	}

	type obj = map[string]any
	var cond obj
	switch req.Field {
	case types.FieldTitle:
		cond = obj{"_text_all": obj{"patent_title": q}}
	case types.FieldAuthor:
		// The last word of an inventor name is matched; a two-word query also
		// constrains the first name.
		terms := strings.Fields(q)
		last := obj{"_contains": obj{"inventors.inventor_name_last": terms[len(terms)-1]}}
		if len(terms) > 1 {
			first := obj{"_contains": obj{"inventors.inventor_name_first": terms[0]}}
			cond = obj{"_and": []obj{first, last}}
		} else {
			cond = last
		}
	case types.FieldYear:
		y, ok := parseYearQuery(q)
		if !ok {
			return "", errors.Newf("year query %q is not a four-digit year", q)
		}
		cond = obj{"_and": []obj{
			{"_gte": obj{"patent_date": fmt.Sprintf("%d-01-01", y)}},
			{"_lte": obj{"patent_date": fmt.Sprintf("%d-12-31", y)}},
		}}
	default:
		cond = obj{"_or": []obj{
			{"_text_any": obj{"patent_title": q}},
			{"_text_any": obj{"patent_abstract": q}},
		}}
	}

	b, err := json.Marshal(cond)
	if err != nil {
		return "", errors.Wrap(err, "encoding PatentsView query")
	}
	return string(b), nil
}

// PatentsView API JSON structures.
type patentsViewResponse struct {
	Patents []json.RawMessage `json:"patents"`
	Count   int               `json:"count"`
	Total   int               `json:"total_hits"`
}

type patentsViewPatent struct {
	PatentID       string                `json:"patent_id"`
	PatentTitle    string                `json:"patent_title"`
	PatentAbstract string                `json:"patent_abstract"`
	PatentDate     string                `json:"patent_date"`
	PatentType     string                `json:"patent_type"`
	TimesCited     int                   `json:"patent_num_times_cited_by_us_patents"`
	Inventors      []patentsViewInventor `json:"inventors"`
	Assignees      []patentsViewAssignee `json:"assignees"`
}

type patentsViewInventor struct {
	InventorNameFirst string `json:"inventor_name_first"`
	InventorNameLast  string `json:"inventor_name_last"`
}

type patentsViewAssignee struct {
	Organization string `json:"assignee_organization"`
}
