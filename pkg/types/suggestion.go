// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// EntryType is the closed set of bibliographic entry kinds.
type EntryType string

const (
	EntryBook            EntryType = "book"
	EntryJournalArticle  EntryType = "journal_article"
	EntryConferencePaper EntryType = "conference_paper"
	EntryBookChapter     EntryType = "book_chapter"
	EntryThesis          EntryType = "thesis"
	EntryReport          EntryType = "report"
	EntryDataset         EntryType = "dataset"
	EntryPreprint        EntryType = "preprint"
	EntryPatent          EntryType = "patent"
	EntryWebsite         EntryType = "website"

	// EntryOther is the fallback for provider types with no mapping.
	EntryOther EntryType = "other"
)

// Author is one contributor in source order.
type Author struct {
	FirstName string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  string `json:"last_name" yaml:"last_name"`
}

// FullName returns "First Last", or just the last name.
func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Metadata holds optional, provider-agnostic bibliographic fields. Providers
// fill only what they have. Extra carries provider-specific values that have
// no first-class field yet.
type Metadata struct {
	DOI           string            `json:"doi,omitempty" yaml:"doi,omitempty"`
	ISBN          string            `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	ISSN          string            `json:"issn,omitempty" yaml:"issn,omitempty"`
	URL           string            `json:"url,omitempty" yaml:"url,omitempty"`
	Journal       string            `json:"journal,omitempty" yaml:"journal,omitempty"`
	Volume        string            `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue         string            `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages         string            `json:"pages,omitempty" yaml:"pages,omitempty"`
	Publisher     string            `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Language      string            `json:"language,omitempty" yaml:"language,omitempty"`
	Abstract      string            `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	PMID          string            `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	ArxivID       string            `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	CitationCount *int              `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`
	Extra         map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Citations returns the citation count, or 0 when the provider did not
// report one.
func (m Metadata) Citations() int {
	if m.CitationCount == nil || *m.CitationCount < 0 {
		return 0
	}
	return *m.CitationCount
}

// Clone returns a deep copy that shares no pointers or maps with m.
func (m Metadata) Clone() Metadata {
	out := m
	if m.CitationCount != nil {
		n := *m.CitationCount
		out.CitationCount = &n
	}
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// FillFrom copies into m every field that m lacks and other has. Fields m
// already holds are left alone.
func (m *Metadata) FillFrom(other Metadata) {
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&m.DOI, other.DOI)
	fill(&m.ISBN, other.ISBN)
	fill(&m.ISSN, other.ISSN)
	fill(&m.URL, other.URL)
	fill(&m.Journal, other.Journal)
	fill(&m.Volume, other.Volume)
	fill(&m.Issue, other.Issue)
	fill(&m.Pages, other.Pages)
	fill(&m.Publisher, other.Publisher)
	fill(&m.Language, other.Language)
	fill(&m.Abstract, other.Abstract)
	fill(&m.PMID, other.PMID)
	fill(&m.ArxivID, other.ArxivID)
	if m.CitationCount == nil && other.CitationCount != nil {
		n := *other.CitationCount
		m.CitationCount = &n
	}
	for k, v := range other.Extra {
		if _, ok := m.Extra[k]; ok {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]string)
		}
		m.Extra[k] = v
	}
}

// Suggestion is a normalized candidate record produced by one adapter.
// Adapters hand out fresh values; the ranker builds new values for merged
// records instead of editing its input.
type Suggestion struct {
	// ID is provider-scoped and only unique within one source.
	ID string `json:"id" yaml:"id"`

	// Source names the adapter that produced the record (e.g. "crossref").
	Source string `json:"source" yaml:"source"`

	// Title is always non-empty.
	Title string `json:"title" yaml:"title"`

	Authors   []Author  `json:"authors" yaml:"authors"`
	Year      *int      `json:"year,omitempty" yaml:"year,omitempty"`
	EntryType EntryType `json:"entry_type" yaml:"entry_type"`
	Metadata  Metadata  `json:"metadata" yaml:"metadata"`

	// Score is the relevance score assigned by the ranker.
	Score float64 `json:"score" yaml:"score"`

	// SeenIn lists every source that contributed to a merged record.
	SeenIn []string `json:"seen_in,omitempty" yaml:"seen_in,omitempty"`
}

// Clone returns a deep copy of s.
func (s Suggestion) Clone() Suggestion {
	out := s
	if s.Authors != nil {
		out.Authors = append([]Author(nil), s.Authors...)
	}
	if s.Year != nil {
		y := *s.Year
		out.Year = &y
	}
	if s.SeenIn != nil {
		out.SeenIn = append([]string(nil), s.SeenIn...)
	}
	out.Metadata = s.Metadata.Clone()
	return out
}

// YearValue returns the year, or 0 when unknown.
func (s Suggestion) YearValue() int {
	if s.Year == nil {
		return 0
	}
	return *s.Year
}
