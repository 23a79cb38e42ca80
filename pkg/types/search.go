// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the sourcefinder engine:
// the normalized Suggestion record every provider adapter produces, the
// request/result pair exchanged with callers, and configuration.
package types

import (
	"strings"
)

// FieldQualifier is the dimension a query is scoped to.
type FieldQualifier string

const (
	FieldAny       FieldQualifier = "any"
	FieldAuthor    FieldQualifier = "author"
	FieldTitle     FieldQualifier = "title"
	FieldPublisher FieldQualifier = "publisher"
	FieldJournal   FieldQualifier = "journal"
	FieldSubject   FieldQualifier = "subject"
	FieldYear      FieldQualifier = "year"
)

// AllFields lists every recognized field qualifier.
var AllFields = []FieldQualifier{
	FieldAny, FieldAuthor, FieldTitle, FieldPublisher, FieldJournal, FieldSubject, FieldYear,
}

// Valid reports whether f is one of the recognized qualifiers.
func (f FieldQualifier) Valid() bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}

// ParseField converts user input into a FieldQualifier. The empty string
// maps to FieldAny.
func ParseField(s string) (FieldQualifier, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FieldAny, true
	}
	f := FieldQualifier(s)
	return f, f.Valid()
}

// SearchRequest is one search call. It is a value type: adapters receive
// their own copy and never share it.
type SearchRequest struct {
	// Query is the raw query text.
	Query string `json:"query" yaml:"query"`

	// Field scopes the query.
	Field FieldQualifier `json:"field" yaml:"field"`

	// MaxResults is the page size.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Offset is the pagination cursor passed through to providers.
	Offset int `json:"offset" yaml:"offset"`
}

// SearchResult is the ranked page returned to the caller.
type SearchResult struct {
	Suggestions []Suggestion `json:"suggestions" yaml:"suggestions"`

	// Total is an estimate, not an authoritative pagination total. It may be
	// inflated by a heuristic multiplier when providers likely hold more
	// results than were fetched.
	Total int `json:"total" yaml:"total"`

	HasMore bool `json:"has_more" yaml:"has_more"`
}
