// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

func TestNewAdaptersDefault(t *testing.T) {
	adapters, err := NewAdapters(types.SearchConfig{}, Base{})
	if err != nil {
		t.Fatalf("NewAdapters: %v", err)
	}
	got := Names(adapters)
	for _, name := range got {
		if name == SourcePatentsView {
			t.Error("patentsview enabled without an API key")
		}
	}
	if len(got) != len(KnownSources())-1 {
		t.Errorf("adapters = %v, want every source but patentsview", got)
	}
	if got[0] != SourceCrossref {
		t.Errorf("first adapter = %q, want crossref", got[0])
	}
}

func TestNewAdaptersExplicitSources(t *testing.T) {
	cfg := types.SearchConfig{
		Sources:      []string{" ArXiv ", "crossref"},
		ContactEmail: "me@example.org",
		HTTPConfig:   types.HTTPConfig{Timeout: 3 * time.Second},
	}
	adapters, err := NewAdapters(cfg, Base{})
	if err != nil {
		t.Fatalf("NewAdapters: %v", err)
	}
	if got := fmt.Sprint(Names(adapters)); got != "[crossref arxiv]" {
		t.Errorf("adapters = %s, want [crossref arxiv] in registration order", got)
	}

	cr, ok := adapters[0].(*CrossrefAdapter)
	if !ok {
		t.Fatalf("adapters[0] is %T, want *CrossrefAdapter", adapters[0])
	}
	if cr.Mailto != "me@example.org" {
		t.Errorf("Mailto = %q", cr.Mailto)
	}
	if cr.HTTP.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cr.HTTP.Timeout)
	}
	if cr.HTTP.UserAgent != types.DefaultUserAgent {
		t.Errorf("UserAgent = %q, want default", cr.HTTP.UserAgent)
	}
}

func TestNewAdaptersErrors(t *testing.T) {
	_, err := NewAdapters(types.SearchConfig{Sources: []string{"scopus"}}, Base{})
	if err == nil || !strings.Contains(err.Error(), "unknown source") {
		t.Errorf("err = %v, want unknown source", err)
	}

	_, err = NewAdapters(types.SearchConfig{Sources: []string{"patentsview"}}, Base{})
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("err = %v, want missing API key", err)
	}
}

func TestNewAdaptersPatentsViewWithKey(t *testing.T) {
	adapters, err := NewAdapters(types.SearchConfig{PatentsViewAPIKey: "k"}, Base{})
	if err != nil {
		t.Fatalf("NewAdapters: %v", err)
	}
	if len(adapters) != len(KnownSources()) {
		t.Errorf("adapters = %v, want all sources", Names(adapters))
	}
}

func TestDefaultPrioritiesCoverKnownSources(t *testing.T) {
	p := DefaultPriorities()
	for _, name := range KnownSources() {
		if p.Of(name) <= 0 {
			t.Errorf("source %q has no priority", name)
		}
	}
	if p.Of("unknown") != 0 {
		t.Error("unknown source should have priority 0")
	}
}
