// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	req := types.SearchRequest{Query: "power broker", Field: types.FieldTitle, MaxResults: 20}
	res := sampleResult()

	if err := WriteQueryFile(path, req, []string{"crossref", "openlibrary"}, res); err != nil {
		t.Fatalf("WriteQueryFile: %v", err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("ReadQueryFile: %v", err)
	}
	if qf.Query != req {
		t.Errorf("Query = %+v, want %+v", qf.Query, req)
	}
	if len(qf.Result.Suggestions) != 2 || qf.Result.Suggestions[0].Title != res.Suggestions[0].Title {
		t.Errorf("Result = %+v", qf.Result)
	}
	if qf.Result.Suggestions[0].YearValue() != 1974 {
		t.Errorf("Year lost in round trip")
	}
	if qf.Summary.Returned != 2 || qf.Summary.Total != 6 || !qf.Summary.HasMore {
		t.Errorf("Summary = %+v", qf.Summary)
	}
	if qf.Summary.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if strings.Join(qf.Sources, ",") != "crossref,openlibrary" {
		t.Errorf("Sources = %v", qf.Sources)
	}
}

func TestReadQueryFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadQueryFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("query: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadQueryFile(bad); err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("expected parse error, got %v", err)
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("query:\n  query: x\n  field: isbn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadQueryFile(unknown); err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Errorf("expected unknown field error, got %v", err)
	}
}

func TestReadQueryFileDefaultsField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	if err := os.WriteFile(path, []byte("query:\n  query: caro\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if qf.Query.Field != types.FieldAny {
		t.Errorf("Field = %q, want any", qf.Query.Field)
	}
}
