// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

const sampleOpenLibraryJSON = `{
  "numFound": 2,
  "docs": [
    {
      "key": "/works/OL1168083W",
      "title": "The Power Broker",
      "subtitle": "Robert Moses and the Fall of New York",
      "author_name": ["Robert A. Caro"],
      "first_publish_year": 1974,
      "isbn": ["0394480767", "9780394480763"],
      "publisher": ["Knopf", "Vintage Books"],
      "language": ["eng"],
      "edition_count": 23
    },
    {"key": "/works/OL0W", "title": "", "author_name": ["Nobody"]}
  ]
}`

func TestOpenLibraryAdapterSearch(t *testing.T) {
	ts := jsonServer(http.StatusOK, sampleOpenLibraryJSON)
	defer ts.Close()
	withBaseURL(t, &openLibrarySearchBase, ts.URL)

	a := &OpenLibraryAdapter{Base: testBase(ts)}
	results := a.Search(context.Background(), types.SearchRequest{Query: "power broker", Field: types.FieldTitle})
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	r := results[0]
	if r.Title != "The Power Broker: Robert Moses and the Fall of New York" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.EntryType != types.EntryBook || r.YearValue() != 1974 {
		t.Errorf("EntryType = %q, Year = %d", r.EntryType, r.YearValue())
	}
	if r.Metadata.ISBN != "9780394480763" {
		t.Errorf("ISBN = %q, want ISBN-13", r.Metadata.ISBN)
	}
	if r.Metadata.Publisher != "Knopf" || r.Metadata.URL != "https://openlibrary.org/works/OL1168083W" {
		t.Errorf("metadata = %+v", r.Metadata)
	}
	if r.Metadata.CitationCount != nil {
		t.Error("Open Library reports no citation counts")
	}
	if r.Metadata.Extra["edition_count"] != "23" {
		t.Errorf("edition_count = %q", r.Metadata.Extra["edition_count"])
	}
	if r.Authors[0].LastName != "Caro" {
		t.Errorf("Authors = %+v", r.Authors)
	}
}

func TestBuildOpenLibraryParams(t *testing.T) {
	tests := []struct {
		field types.FieldQualifier
		query string
		key   string
		want  string
	}{
		{types.FieldAny, "moses", "q", "moses"},
		{types.FieldTitle, "power broker", "title", "power broker"},
		{types.FieldAuthor, "caro", "author", "caro"},
		{types.FieldPublisher, "knopf", "publisher", "knopf"},
		{types.FieldSubject, "urban planning", "subject", "urban planning"},
		{types.FieldYear, "1974", "q", "first_publish_year:1974"},
	}
	for _, tt := range tests {
		p := buildOpenLibraryParams(types.SearchRequest{Query: tt.query, Field: tt.field})
		if got := p.Get(tt.key); got != tt.want {
			t.Errorf("%s: %s = %q, want %q", tt.field, tt.key, got, tt.want)
		}
	}
}

func TestOpenLibraryAdapterPaging(t *testing.T) {
	ts, raw := capturingServer(t, `{"docs":[]}`)
	withBaseURL(t, &openLibrarySearchBase, ts.URL)

	a := &OpenLibraryAdapter{Base: testBase(ts)}
	a.Search(context.Background(), types.SearchRequest{Query: "x", MaxResults: 30, Offset: 30})

	q, err := url.ParseQuery(*raw)
	if err != nil {
		t.Fatal(err)
	}
	if q.Get("limit") != "30" || q.Get("offset") != "30" || q.Get("fields") == "" {
		t.Errorf("query = %v", q)
	}
}

func TestOpenLibraryAdapterServerError(t *testing.T) {
	ts := jsonServer(http.StatusServiceUnavailable, "down")
	defer ts.Close()
	withBaseURL(t, &openLibrarySearchBase, ts.URL)

	a := &OpenLibraryAdapter{Base: testBase(ts)}
	if got := a.Search(context.Background(), types.SearchRequest{Query: "x"}); len(got) != 0 {
		t.Errorf("len(results) = %d, want 0", len(got))
	}
	if Supports(a, types.FieldJournal) {
		t.Error("openlibrary should not support journal")
	}
}

func TestOpenLibraryAdapterSkipsMalformedDoc(t *testing.T) {
	body := `{"numFound":2,"docs":[
	  {"key":"/works/OL1W","title":"Good Book","author_name":["Jane Doe"],"first_publish_year":1999},
	  {"key":"/works/OL2W","title":"Bad Book","author_name":"Jane Doe"}
	]}`
	ts := jsonServer(http.StatusOK, body)
	defer ts.Close()
	withBaseURL(t, &openLibrarySearchBase, ts.URL)

	a := &OpenLibraryAdapter{Base: testBase(ts)}
	results := a.Search(context.Background(), types.SearchRequest{Query: "book"})
	if len(results) != 1 || results[0].Title != "Good Book" {
		t.Fatalf("results = %+v, want only the well-formed doc", results)
	}
}
