// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

// fuzzyTitleLen caps the title portion of the fuzzy key.
const fuzzyTitleLen = 60

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// NormalizeDOI lower-cases and trims a DOI and strips resolver prefixes.
func NormalizeDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, p := range doiPrefixes {
		if strings.HasPrefix(d, p) {
			d = strings.TrimSpace(d[len(p):])
			break
		}
	}
	return d
}

// doiKey returns the primary dedup key, or "" when s has no DOI.
func doiKey(s types.Suggestion) string {
	if d := NormalizeDOI(s.Metadata.DOI); d != "" {
		return "doi:" + d
	}
	return ""
}

// fuzzyKey combines the normalized title prefix, the first author's surname
// and the year. It returns "" when the title has no alphanumeric content.
func fuzzyKey(s types.Suggestion) string {
	title := keepRunes(strings.ToLower(s.Title), func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	if title == "" {
		return ""
	}
	if r := []rune(title); len(r) > fuzzyTitleLen {
		title = string(r[:fuzzyTitleLen])
	}

	surname := ""
	if len(s.Authors) > 0 {
		surname = keepRunes(strings.ToLower(s.Authors[0].LastName), unicode.IsLetter)
	}

	year := ""
	if s.Year != nil {
		year = strconv.Itoa(*s.Year)
	}
	return "fz:" + title + "|" + surname + "|" + year
}

// dedupKeys returns every key available for s.
func dedupKeys(s types.Suggestion) []string {
	var keys []string
	if k := doiKey(s); k != "" {
		keys = append(keys, k)
	}
	if k := fuzzyKey(s); k != "" {
		keys = append(keys, k)
	}
	return keys
}

func keepRunes(s string, keep func(rune) bool) string {
	var b strings.Builder
	for _, r := range s {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeText returns a lowercased, punctuation-stripped version of s with
// single spaces between words.
func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokens splits normalized text into words.
func tokens(s string) []string {
	return strings.Fields(normalizeText(s))
}
