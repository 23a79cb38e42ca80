// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

// --- test helpers ---

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testStore(t *testing.T, ttl time.Duration) (*Store, *clock) {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.now = c.now
	return s, c
}

func sampleSuggestions() []types.Suggestion {
	year := 1974
	cites := 812
	return []types.Suggestion{{
		ID:        "10.1000/pb",
		Source:    "crossref",
		Title:     "The Power Broker",
		Authors:   []types.Author{{FirstName: "Robert A.", LastName: "Caro"}},
		Year:      &year,
		EntryType: types.EntryBook,
		Metadata:  types.Metadata{DOI: "10.1000/pb", Publisher: "Knopf", CitationCount: &cites},
	}}
}

// --- tests ---

func TestRequestKey(t *testing.T) {
	base := types.SearchRequest{Query: "The Power Broker", Field: types.FieldTitle, MaxResults: 30}

	tests := []struct {
		name string
		req  types.SearchRequest
		same bool
	}{
		{"identical", base, true},
		{"case and spacing", types.SearchRequest{Query: "  the   power BROKER ", Field: types.FieldTitle, MaxResults: 30}, true},
		{"different field", types.SearchRequest{Query: "The Power Broker", Field: types.FieldAny, MaxResults: 30}, false},
		{"different page size", types.SearchRequest{Query: "The Power Broker", Field: types.FieldTitle, MaxResults: 20}, false},
		{"different offset", types.SearchRequest{Query: "The Power Broker", Field: types.FieldTitle, MaxResults: 30, Offset: 30}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, RequestKey(base) == RequestKey(tt.req))
		})
	}

	assert.Equal(t,
		RequestKey(types.SearchRequest{Query: "x"}),
		RequestKey(types.SearchRequest{Query: "x", Field: types.FieldAny}),
		"empty field is any")
}

func TestStoreRoundTrip(t *testing.T) {
	s, _ := testStore(t, time.Hour)
	ctx := context.Background()
	req := types.SearchRequest{Query: "power broker", Field: types.FieldTitle, MaxResults: 30}

	_, ok, err := s.Get(ctx, "crossref", req)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "crossref", req, sampleSuggestions()))

	got, ok, err := s.Get(ctx, "crossref", req)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleSuggestions(), got)

	// Entries are scoped per adapter.
	_, ok, err = s.Get(ctx, "openalex", req)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorePutEmptyIsIgnored(t *testing.T) {
	s, _ := testStore(t, time.Hour)
	ctx := context.Background()
	req := types.SearchRequest{Query: "nothing", Field: types.FieldAny}

	require.NoError(t, s.Put(ctx, "crossref", req, nil))
	require.NoError(t, s.Put(ctx, "crossref", req, []types.Suggestion{}))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreExpiry(t *testing.T) {
	s, c := testStore(t, time.Hour)
	ctx := context.Background()
	req := types.SearchRequest{Query: "power broker", Field: types.FieldAny}

	require.NoError(t, s.Put(ctx, "crossref", req, sampleSuggestions()))

	c.t = c.t.Add(59 * time.Minute)
	_, ok, err := s.Get(ctx, "crossref", req)
	require.NoError(t, err)
	assert.True(t, ok, "entry within ttl")

	c.t = c.t.Add(2 * time.Minute)
	_, ok, err = s.Get(ctx, "crossref", req)
	require.NoError(t, err)
	assert.False(t, ok, "entry past ttl")
}

func TestStorePruneAndClear(t *testing.T) {
	s, c := testStore(t, 24*time.Hour)
	ctx := context.Background()

	old := types.SearchRequest{Query: "old", Field: types.FieldAny}
	fresh := types.SearchRequest{Query: "fresh", Field: types.FieldAny}

	require.NoError(t, s.Put(ctx, "crossref", old, sampleSuggestions()))
	c.t = c.t.Add(3 * time.Hour)
	require.NoError(t, s.Put(ctx, "crossref", fresh, sampleSuggestions()))

	removed, err := s.Prune(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok, err := s.Get(ctx, "crossref", fresh)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err = s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()
	req := types.SearchRequest{Query: "power broker", Field: types.FieldAny}

	s, err := Open(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "crossref", req, sampleSuggestions()))
	require.NoError(t, s.Close())

	s, err = Open(path, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "crossref", req)
	require.NoError(t, err)
	assert.True(t, ok)
}
