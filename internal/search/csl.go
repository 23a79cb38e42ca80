package search

import (
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Publisher      string    `yaml:"publisher,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Language       string    `yaml:"language,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	ISBN           string    `yaml:"ISBN,omitempty"`
	ISSN           string    `yaml:"ISSN,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
	Number         string    `yaml:"number,omitempty"`
	Authority      string    `yaml:"authority,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// cslTypes maps entry types onto CSL item types.
var cslTypes = map[types.EntryType]string{
	types.EntryBook:            "book",
	types.EntryJournalArticle:  "article-journal",
	types.EntryConferencePaper: "paper-conference",
	types.EntryBookChapter:     "chapter",
	types.EntryThesis:          "thesis",
	types.EntryReport:          "report",
	types.EntryDataset:         "dataset",
	types.EntryPreprint:        "article",
	types.EntryPatent:          "patent",
	types.EntryWebsite:         "webpage",
}

// FormatCSL writes the suggestions as a CSL-YAML list to w.
func FormatCSL(res types.SearchResult, w io.Writer) error {
	items := make([]CSLItem, len(res.Suggestions))
	for i, s := range res.Suggestions {
		items[i] = toCSLItem(s)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a Suggestion to a CSLItem. The DOI is preferred as the
// item id since it is stable across providers.
func toCSLItem(s types.Suggestion) CSLItem {
	m := s.Metadata
	item := CSLItem{
		ID:             s.Source + ":" + s.ID,
		Type:           cslType(s.EntryType),
		Title:          s.Title,
		ContainerTitle: m.Journal,
		Publisher:      m.Publisher,
		Volume:         m.Volume,
		Issue:          m.Issue,
		Page:           m.Pages,
		Language:       m.Language,
		Abstract:       m.Abstract,
		DOI:            NormalizeDOI(m.DOI),
		ISBN:           m.ISBN,
		ISSN:           m.ISSN,
		PMID:           m.PMID,
		URL:            m.URL,
	}
	if item.DOI != "" {
		item.ID = item.DOI
	}
	if s.EntryType == types.EntryPatent {
		item.Number = m.Extra["patent_number"]
		item.Authority = "United States Patent and Trademark Office"
	}

	for _, a := range s.Authors {
		item.Author = append(item.Author, cslName(a))
	}

	if s.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*s.Year}}}
	}
	return item
}

func cslType(t types.EntryType) string {
	if ct, ok := cslTypes[t]; ok {
		return ct
	}
	return "document"
}

// cslName maps an author onto CSL family/given parts. Names without a given
// part, such as organizations, use the literal field.
func cslName(a types.Author) CSLName {
	if a.FirstName == "" {
		return CSLName{Literal: a.LastName}
	}
	return CSLName{Family: a.LastName, Given: a.FirstName}
}
