// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

// Score weights.
const (
	titleWeight     = 50.0
	authorWeight    = 40.0
	venueWeight     = 40.0
	bookTitleBoost  = 5.0
	subjectBonus    = 5.0
	yearMatchBonus  = 30.0
	impactScale     = 10.0
	minQueryWordLen = 3
)

// Ranker deduplicates a pool of suggestions and orders the result by
// relevance. It holds no per-call state and is safe for concurrent use.
type Ranker struct {
	priorities Priorities
}

// NewRanker returns a Ranker using a private copy of p.
func NewRanker(p Priorities) *Ranker {
	return &Ranker{priorities: p.clone()}
}

// group is one deduplicated work. keys holds every dedup key of every
// record folded into it. A group absorbed by another points at it through
// into.
type group struct {
	s     types.Suggestion
	pos   int
	keys  []string
	into  *group
	alive bool
}

func (g *group) root() *group {
	for g.into != nil {
		g = g.into
	}
	return g
}

func (g *group) addKeys(keys []string) {
	for _, k := range keys {
		if !slices.Contains(g.keys, k) {
			g.keys = append(g.keys, k)
		}
	}
}

// RankAndDedupe collapses duplicates in pool, scores every remaining record
// for query and field, and returns them best first. The input is not
// modified.
func (r *Ranker) RankAndDedupe(query string, pool []types.Suggestion, field types.FieldQualifier) []types.Suggestion {
	groups := r.dedupe(pool)
	if len(groups) == 0 {
		return []types.Suggestion{}
	}

	for _, g := range groups {
		g.s.Score = r.Score(query, g.s, field)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.s.Score != b.s.Score {
			return a.s.Score > b.s.Score
		}
		if pa, pb := r.priorities.Of(a.s.Source), r.priorities.Of(b.s.Source); pa != pb {
			return pa > pb
		}
		return a.pos < b.pos
	})

	out := make([]types.Suggestion, len(groups))
	for i, g := range groups {
		out[i] = g.s
	}
	return out
}

// Dedupe merges records describing the same work and returns one record per
// work in first-seen order. Scores are left at zero.
func (r *Ranker) Dedupe(pool []types.Suggestion) []types.Suggestion {
	groups := r.dedupe(pool)
	out := make([]types.Suggestion, len(groups))
	for i, g := range groups {
		out[i] = g.s
	}
	return out
}

// dedupe makes one pass over pool. Every record is looked up under its DOI
// key and its fuzzy key; a hit merges the record into the existing group and
// the merged group is looked up again under all keys it has collected, so a
// record bridging two groups collapses both. No two surviving groups share
// a key.
func (r *Ranker) dedupe(pool []types.Suggestion) []*group {
	index := make(map[string]*group)
	var groups []*group

	for pos, s := range pool {
		cur := &group{s: s.Clone(), pos: pos, alive: true}
		if len(cur.s.SeenIn) == 0 && cur.s.Source != "" {
			cur.s.SeenIn = []string{cur.s.Source}
		}
		cur.addKeys(dedupKeys(cur.s))
		isNew := true

		for {
			hit := lookup(index, cur)
			if hit == nil {
				break
			}
			hit.s = r.merge(hit, cur)
			if cur.pos < hit.pos {
				hit.pos = cur.pos
			}
			hit.addKeys(cur.keys)
			hit.addKeys(dedupKeys(hit.s))
			cur.alive = false
			cur.into = hit
			cur = hit
			isNew = false
		}

		if isNew {
			groups = append(groups, cur)
		}
		for _, k := range cur.keys {
			index[k] = cur
		}
	}

	alive := groups[:0]
	for _, g := range groups {
		if g.alive {
			alive = append(alive, g)
		}
	}
	sort.SliceStable(alive, func(i, j int) bool { return alive[i].pos < alive[j].pos })
	return alive
}

// lookup returns a live group other than cur that shares a key with cur.
func lookup(index map[string]*group, cur *group) *group {
	for _, k := range cur.keys {
		g, ok := index[k]
		if !ok {
			continue
		}
		if g = g.root(); g != cur && g.alive {
			return g
		}
	}
	return nil
}

// merge combines two records of the same work. The higher-priority source
// is the base (the earlier record on a tie); the other fills only metadata
// the base lacks, the longer author list wins, and the base year is kept
// when present.
func (r *Ranker) merge(a, b *group) types.Suggestion {
	base, other := a, b
	pa, pb := r.priorities.Of(a.s.Source), r.priorities.Of(b.s.Source)
	if pb > pa || (pb == pa && b.pos < a.pos) {
		base, other = b, a
	}

	out := base.s.Clone()
	out.Metadata.FillFrom(other.s.Metadata)

	if len(other.s.Authors) > len(out.Authors) {
		out.Authors = append([]types.Author(nil), other.s.Authors...)
	}
	if out.Year == nil && other.s.Year != nil {
		y := *other.s.Year
		out.Year = &y
	}
	if (out.EntryType == "" || out.EntryType == types.EntryOther) && other.s.EntryType != "" {
		out.EntryType = other.s.EntryType
	}

	first, second := a.s.SeenIn, b.s.SeenIn
	if b.pos < a.pos {
		first, second = second, first
	}
	out.SeenIn = unionSources(first, second)
	return out
}

func unionSources(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Score returns the relevance of s to query under field. Every component is
// non-negative.
func (r *Ranker) Score(query string, s types.Suggestion, field types.FieldQualifier) float64 {
	impact := citationImpact(s.Metadata.Citations())
	priority := float64(r.priorities.Of(s.Source))

	switch field {
	case types.FieldTitle:
		score := titleWeight*titleRelevance(query, s.Title) + impact + priority
		if s.EntryType == types.EntryBook {
			score += bookTitleBoost
		}
		return score
	case types.FieldAuthor:
		return authorWeight*authorRelevance(query, s.Authors) + 2*impact + priority
	case types.FieldPublisher:
		return venueWeight*venueRelevance(query, s.Metadata.Publisher) + impact + priority
	case types.FieldJournal:
		return venueWeight*venueRelevance(query, s.Metadata.Journal) + impact + priority
	case types.FieldSubject:
		return 2*impact + subjectBonus + priority
	case types.FieldYear:
		score := impact + priority
		if y, ok := parseYearQuery(query); ok && s.Year != nil && *s.Year == y {
			score += yearMatchBonus
		}
		return score
	default:
		return titleWeight*titleRelevance(query, s.Title) + impact + priority
	}
}

// citationImpact compresses citation counts so large differences flatten.
func citationImpact(citations int) float64 {
	if citations < 0 {
		citations = 0
	}
	return math.Log10(float64(citations)+1) * impactScale
}

// titleRelevance is 1.0 for a normalized exact match, 0.9 when the query is a
// prefix or suffix of the title, otherwise the fraction of query words longer
// than two characters present in the title.
func titleRelevance(query, title string) float64 {
	q, t := normalizeText(query), normalizeText(title)
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return 1.0
	}
	if strings.HasPrefix(t, q) || strings.HasSuffix(t, q) {
		return 0.9
	}

	titleWords := make(map[string]bool)
	for _, w := range strings.Fields(t) {
		titleWords[w] = true
	}
	var total, found int
	for _, w := range strings.Fields(q) {
		if len([]rune(w)) < minQueryWordLen {
			continue
		}
		total++
		if titleWords[w] {
			found++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(found) / float64(total)
}

// authorRelevance is 1.0 for an exact full-name match, 0.9 for containment
// in either direction, otherwise the best author's fraction of query tokens
// matched.
func authorRelevance(query string, authors []types.Author) float64 {
	q := normalizeText(query)
	if q == "" {
		return 0
	}
	qTokens := strings.Fields(q)

	best := 0.0
	for _, a := range authors {
		name := normalizeText(a.FullName())
		if name == "" {
			continue
		}
		if name == q {
			return 1.0
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			best = math.Max(best, 0.9)
			continue
		}
		nameTokens := make(map[string]bool)
		for _, t := range strings.Fields(name) {
			nameTokens[t] = true
		}
		matched := 0
		for _, t := range qTokens {
			if nameTokens[t] {
				matched++
			}
		}
		best = math.Max(best, float64(matched)/float64(len(qTokens)))
	}
	return best
}

// venueRelevance scores a publisher or journal name: 1.0 exact, 0.8
// containment either way, otherwise the share of query tokens found.
func venueRelevance(query, venue string) float64 {
	q, v := normalizeText(query), normalizeText(venue)
	if q == "" || v == "" {
		return 0
	}
	if q == v {
		return 1.0
	}
	if strings.Contains(v, q) || strings.Contains(q, v) {
		return 0.8
	}
	venueTokens := make(map[string]bool)
	for _, t := range strings.Fields(v) {
		venueTokens[t] = true
	}
	qTokens := strings.Fields(q)
	matched := 0
	for _, t := range qTokens {
		if venueTokens[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(qTokens))
}
