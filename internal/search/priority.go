// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

// Source names used by the built-in adapters.
const (
	SourceCrossref        = "crossref"
	SourceOpenAlex        = "openalex"
	SourceSemanticScholar = "semantic_scholar"
	SourceArxiv           = "arxiv"
	SourcePubMed          = "pubmed"
	SourceOpenLibrary     = "openlibrary"
	SourceGoogleBooks     = "googlebooks"
	SourcePatentsView     = "patentsview"
)

// Priorities ranks sources by metadata richness and trustworthiness. A
// higher value wins a merge and adds more to a record's score.
type Priorities map[string]int

// DefaultPriorities returns a fresh copy of the built-in table: the citation
// indexes with the richest schemas first, then preprint and library catalogs,
// then the general book catalog.
func DefaultPriorities() Priorities {
	return Priorities{
		SourceCrossref:        10,
		SourceOpenAlex:        9,
		SourcePubMed:          8,
		SourceSemanticScholar: 8,
		SourceArxiv:           6,
		SourceOpenLibrary:     5,
		SourcePatentsView:     4,
		SourceGoogleBooks:     3,
	}
}

// Of returns the priority of source, 0 for unknown sources.
func (p Priorities) Of(source string) int {
	return p[source]
}

func (p Priorities) clone() Priorities {
	out := make(Priorities, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
