// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sourcefinder/pkg/types"
)

// QueryFile is the on-disk representation of a search request and its
// result. A saved search can be reloaded and re-rendered without querying
// the providers again.
type QueryFile struct {
	Query   types.SearchRequest `yaml:"query"`
	Sources []string            `yaml:"sources,omitempty"`
	Result  types.SearchResult  `yaml:"result"`
	Summary QuerySummary        `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Returned  int       `yaml:"returned"`
	Total     int       `yaml:"total_estimate"`
	HasMore   bool      `yaml:"has_more"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves req and res to a YAML file. sources names the
// adapters that were eligible for the search.
func WriteQueryFile(path string, req types.SearchRequest, sources []string, res types.SearchResult) error {
	qf := QueryFile{
		Query:   req,
		Sources: sources,
		Result:  res,
		Summary: QuerySummary{
			Returned:  len(res.Suggestions),
			Total:     res.Total,
			HasMore:   res.HasMore,
			Timestamp: time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return errors.Wrap(err, "marshaling query file")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing query file %s", path)
	}
	return nil
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading query file")
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, errors.Wrap(err, "parsing query file")
	}
	if qf.Query.Field == "" {
		qf.Query.Field = types.FieldAny
	}
	if !qf.Query.Field.Valid() {
		return nil, errors.Newf("query file %s: unknown field %q", path, qf.Query.Field)
	}
	return &qf, nil
}
