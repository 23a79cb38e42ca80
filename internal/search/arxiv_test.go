// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

const sampleArxivXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models are based on
      complex recurrent networks.  </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <arxiv:doi>10.48550/arXiv.1706.03762</arxiv:doi>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2101.00001v1</id>
    <published>2021-01-01T00:00:00Z</published>
    <title>Published Later</title>
    <author><name>Jane Doe</name></author>
    <arxiv:journal_ref>Phys. Rev. D 103, 012345 (2021)</arxiv:journal_ref>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2101.99999v1</id>
    <title>   </title>
  </entry>
  <entry>
    <id>not-an-arxiv-url</id>
    <title>No ID</title>
  </entry>
</feed>`

func TestArxivAdapterSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, sampleArxivXML)
	}))
	defer ts.Close()
	withBaseURL(t, &arxivAPIBase, ts.URL)

	a := &ArxivAdapter{Base: testBase(ts)}
	results := a.Search(context.Background(), types.SearchRequest{Query: "attention", Field: types.FieldTitle})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	r0 := results[0]
	if r0.ID != "1706.03762" || r0.Metadata.ArxivID != "1706.03762" {
		t.Errorf("ID = %q, ArxivID = %q", r0.ID, r0.Metadata.ArxivID)
	}
	if r0.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q, want whitespace collapsed", r0.Title)
	}
	if r0.Metadata.Abstract != "The dominant sequence transduction models are based on complex recurrent networks." {
		t.Errorf("Abstract = %q", r0.Metadata.Abstract)
	}
	if r0.Metadata.DOI != "10.48550/arxiv.1706.03762" {
		t.Errorf("DOI = %q", r0.Metadata.DOI)
	}
	if r0.EntryType != types.EntryPreprint {
		t.Errorf("EntryType = %q, want preprint", r0.EntryType)
	}
	if r0.YearValue() != 2017 {
		t.Errorf("Year = %d", r0.YearValue())
	}
	if len(r0.Authors) != 2 || r0.Authors[1].LastName != "Shazeer" {
		t.Errorf("Authors = %+v", r0.Authors)
	}

	r1 := results[1]
	if r1.EntryType != types.EntryJournalArticle || r1.Metadata.Journal != "Phys. Rev. D 103, 012345 (2021)" {
		t.Errorf("journal ref not applied: %q %q", r1.EntryType, r1.Metadata.Journal)
	}
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		name string
		req  types.SearchRequest
		want string
	}{
		{"any", types.SearchRequest{Query: "attention mechanism", Field: types.FieldAny}, "all:attention AND all:mechanism"},
		{"title", types.SearchRequest{Query: "attention", Field: types.FieldTitle}, "ti:attention"},
		{"author", types.SearchRequest{Query: "Vaswani", Field: types.FieldAuthor}, "au:Vaswani"},
		{"journal", types.SearchRequest{Query: "Phys Rev", Field: types.FieldJournal}, "jr:Phys AND jr:Rev"},
		{"subject", types.SearchRequest{Query: "graphene", Field: types.FieldSubject}, "abs:graphene"},
		{"punctuation", types.SearchRequest{Query: `"deep" learning!`, Field: types.FieldAny}, "all:deep AND all:learning"},
		{"empty", types.SearchRequest{Query: "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildArxivQuery(tt.req); got != tt.want {
				t.Errorf("buildArxivQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArxivAdapterPaging(t *testing.T) {
	ts, raw := capturingServer(t, `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
	withBaseURL(t, &arxivAPIBase, ts.URL)

	a := &ArxivAdapter{Base: testBase(ts)}
	a.Search(context.Background(), types.SearchRequest{Query: "x", MaxResults: 30, Offset: 60})

	q, err := url.ParseQuery(*raw)
	if err != nil {
		t.Fatal(err)
	}
	if q.Get("max_results") != "30" || q.Get("start") != "60" {
		t.Errorf("query = %v, want max_results=30 start=60", q)
	}
	if q.Get("search_query") != "all:x" {
		t.Errorf("search_query = %q", q.Get("search_query"))
	}
}

func TestArxivAdapterMalformedXML(t *testing.T) {
	ts := jsonServer(http.StatusOK, "<feed><entry>")
	defer ts.Close()
	withBaseURL(t, &arxivAPIBase, ts.URL)

	a := &ArxivAdapter{Base: testBase(ts)}
	if got := a.Search(context.Background(), types.SearchRequest{Query: "x"}); len(got) != 0 {
		t.Errorf("len(results) = %d, want 0", len(got))
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := map[string]string{
		"http://arxiv.org/abs/2301.07041v1":     "2301.07041",
		"http://arxiv.org/abs/2301.07041":       "2301.07041",
		"http://arxiv.org/abs/hep-th/9901001v2": "hep-th/9901001",
		"http://example.com/paper":              "",
	}
	for in, want := range tests {
		if got := extractArxivID(in); got != want {
			t.Errorf("extractArxivID(%q) = %q, want %q", in, got, want)
		}
	}
}
