// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

const sampleCrossrefJSON = `{
  "status": "ok",
  "message": {
    "total-results": 3,
    "items": [
      {
        "DOI": "10.1000/powerbroker",
        "title": ["The Power Broker"],
        "author": [{"given": "Robert A.", "family": "Caro"}],
        "issued": {"date-parts": [[1974, 9]]},
        "container-title": ["Vintage Books"],
        "publisher": "Knopf",
        "ISBN": ["9780394720241"],
        "is-referenced-by-count": 812,
        "type": "book"
      },
      {
        "DOI": "10.2307/4321",
        "title": ["Robert Moses and the Modern City"],
        "author": [{"given": "Kenneth T.", "family": "Jackson"}, {"name": "Columbia University"}],
        "issued": {"date-parts": [[2007]]},
        "container-title": ["Journal of Urban History"],
        "volume": "33",
        "issue": "2",
        "page": "181-200",
        "ISSN": ["0096-1442"],
        "abstract": "<jats:p>An <jats:italic>overview</jats:italic>.</jats:p>",
        "type": "journal-article"
      },
      {
        "DOI": "10.1/none",
        "title": [],
        "type": "journal-article"
      }
    ]
  }
}`

func TestCrossrefAdapterSearch(t *testing.T) {
	ts := jsonServer(http.StatusOK, sampleCrossrefJSON)
	defer ts.Close()
	withBaseURL(t, &crossrefAPIBase, ts.URL)

	a := &CrossrefAdapter{Base: testBase(ts)}
	results := a.Search(context.Background(), types.SearchRequest{Query: "power broker", Field: types.FieldTitle})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	book := results[0]
	if book.EntryType != types.EntryBook {
		t.Errorf("EntryType = %q, want book", book.EntryType)
	}
	if book.YearValue() != 1974 {
		t.Errorf("Year = %d, want 1974", book.YearValue())
	}
	if book.Metadata.Journal != "" {
		t.Errorf("Journal = %q, want empty for books", book.Metadata.Journal)
	}
	if book.Metadata.Publisher != "Knopf" || book.Metadata.ISBN != "9780394720241" {
		t.Errorf("metadata = %+v", book.Metadata)
	}
	if book.Metadata.Citations() != 812 {
		t.Errorf("Citations = %d, want 812", book.Metadata.Citations())
	}
	if len(book.Authors) != 1 || book.Authors[0].LastName != "Caro" || book.Authors[0].FirstName != "Robert A." {
		t.Errorf("Authors = %+v", book.Authors)
	}

	article := results[1]
	if article.EntryType != types.EntryJournalArticle {
		t.Errorf("EntryType = %q", article.EntryType)
	}
	if article.Metadata.Journal != "Journal of Urban History" || article.Metadata.Pages != "181-200" {
		t.Errorf("metadata = %+v", article.Metadata)
	}
	if article.Metadata.Abstract != "An overview." {
		t.Errorf("Abstract = %q, want markup stripped", article.Metadata.Abstract)
	}
	if len(article.Authors) != 2 || article.Authors[1].LastName != "Columbia University" {
		t.Errorf("Authors = %+v, want organization kept as last name", article.Authors)
	}
}

func TestBuildCrossrefParams(t *testing.T) {
	tests := []struct {
		field types.FieldQualifier
		query string
		key   string
		want  string
	}{
		{types.FieldAny, "power broker", "query", "power broker"},
		{types.FieldTitle, "power broker", "query.bibliographic", "power broker"},
		{types.FieldAuthor, "Caro", "query.author", "Caro"},
		{types.FieldJournal, "Urban History", "query.container-title", "Urban History"},
		{types.FieldPublisher, "Knopf", "query.publisher-name", "Knopf"},
		{types.FieldYear, "1974", "filter", "from-pub-date:1974-01-01,until-pub-date:1974-12-31"},
		{types.FieldYear, "mid-seventies", "query", "mid-seventies"},
	}
	for _, tt := range tests {
		t.Run(string(tt.field)+"/"+tt.query, func(t *testing.T) {
			p := buildCrossrefParams(types.SearchRequest{Query: tt.query, Field: tt.field})
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestCrossrefAdapterSendsPagingAndMailto(t *testing.T) {
	ts, raw := capturingServer(t, `{"status":"ok","message":{"items":[]}}`)
	withBaseURL(t, &crossrefAPIBase, ts.URL)

	a := &CrossrefAdapter{Base: testBase(ts), Mailto: "me@example.com"}
	a.Search(context.Background(), types.SearchRequest{Query: "caro", Field: types.FieldAuthor, MaxResults: 30, Offset: 20})

	q, err := url.ParseQuery(*raw)
	if err != nil {
		t.Fatal(err)
	}
	if q.Get("rows") != "30" || q.Get("offset") != "20" || q.Get("mailto") != "me@example.com" {
		t.Errorf("query = %v", q)
	}
	if q.Get("select") == "" {
		t.Error("select should be set")
	}
}

func TestCrossrefEntryType(t *testing.T) {
	tests := map[string]types.EntryType{
		"journal-article":     types.EntryJournalArticle,
		"monograph":           types.EntryBook,
		"book-chapter":        types.EntryBookChapter,
		"proceedings-article": types.EntryConferencePaper,
		"dissertation":        types.EntryThesis,
		"posted-content":      types.EntryPreprint,
		"peer-review":         types.EntryOther,
		"":                    types.EntryOther,
	}
	for in, want := range tests {
		if got := crossrefEntryType(in); got != want {
			t.Errorf("crossrefEntryType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCrossrefAdapterFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "oops"},
		{"garbage", http.StatusOK, "<html>not json</html>"},
		{"wrong shape", http.StatusOK, `{"message": "rate limited"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := jsonServer(tt.status, tt.body)
			defer ts.Close()
			withBaseURL(t, &crossrefAPIBase, ts.URL)

			a := &CrossrefAdapter{Base: testBase(ts)}
			if got := a.Search(context.Background(), types.SearchRequest{Query: "x"}); len(got) != 0 {
				t.Errorf("len(results) = %d, want 0", len(got))
			}
		})
	}
}

func TestCrossrefAdapterSkipsMalformedItem(t *testing.T) {
	body := `{"status":"ok","message":{"items":[
	  {"title":["Good Record"],"issued":{"date-parts":[[2020]]}},
	  {"title":["Bad Date Record"],"issued":{"date-parts":[["2020-05"]]}}
	]}}`
	ts := jsonServer(http.StatusOK, body)
	defer ts.Close()
	withBaseURL(t, &crossrefAPIBase, ts.URL)

	a := &CrossrefAdapter{Base: testBase(ts)}
	results := a.Search(context.Background(), types.SearchRequest{Query: "record"})
	if len(results) != 1 || results[0].Title != "Good Record" {
		t.Fatalf("results = %+v, want only the well-formed record", results)
	}
	if results[0].YearValue() != 2020 {
		t.Errorf("Year = %d, want 2020", results[0].YearValue())
	}
}
