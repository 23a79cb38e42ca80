// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

// FormatTable writes a ranked page as a human-readable table to w.
func FormatTable(res types.SearchResult, w io.Writer) {
	if len(res.Suggestions) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-16s  %-7s  %s\n",
		"Rank", "Title", "Authors", "Year", "Type", "Score", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 136))

	for i, s := range res.Suggestions {
		year := ""
		if s.Year != nil {
			year = strconv.Itoa(*s.Year)
		}
		sources := s.Source
		if len(s.SeenIn) > 0 {
			sources = strings.Join(s.SeenIn, ",")
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-16s  %-7.2f  %s\n",
			i+1, truncate(s.Title, 60), formatAuthors(s.Authors), year, s.EntryType, s.Score, sources)
	}

	fmt.Fprintf(w, "\n%d results", len(res.Suggestions))
	if res.Total > len(res.Suggestions) {
		fmt.Fprintf(w, " of about %d", res.Total)
	}
	if res.HasMore {
		fmt.Fprint(w, " (more available)")
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the result as indented JSON to w.
func FormatJSON(res types.SearchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func formatAuthors(authors []types.Author) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0].FullName(), 20)
	default:
		return truncate(authors[0].LastName, 13) + " et al."
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
