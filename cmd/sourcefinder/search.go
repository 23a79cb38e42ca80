// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sourcefinder/internal/cache"
	"github.com/pdiddy/sourcefinder/internal/metrics"
	"github.com/pdiddy/sourcefinder/internal/search"
	"github.com/pdiddy/sourcefinder/internal/secrets"
	"github.com/pdiddy/sourcefinder/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search bibliographic providers for matching works",
	Long: `Search sends the query to every enabled provider that supports the
requested field, merges duplicate records across providers and prints one
ranked page. The total is an estimate.

Fields: any, author, title, publisher, journal, subject, year.

Use --save to keep the request and result in a YAML query file, and --load
to render a saved file again without querying the providers.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("field", "any", "field qualifier: any, author, title, publisher, journal, subject, year")
	searchCmd.Flags().Int("max-results", 0, "page size (default from config, 20)")
	searchCmd.Flags().Int("offset", 0, "pagination offset passed to every provider")
	searchCmd.Flags().String("format", "table", "output format: table, json, csl")
	searchCmd.Flags().String("save", "", "write the request and result to a YAML query file")
	searchCmd.Flags().String("load", "", "render a saved query file instead of searching")
	searchCmd.Flags().Bool("no-cache", false, "bypass the response cache")
	searchCmd.Flags().String("metrics-file", "", "write adapter metrics in Prometheus text format")
	searchCmd.Flags().Duration("timeout", 0, "per-provider request timeout (default 8s)")
	searchCmd.Flags().Duration("request-timeout", 0, "deadline for the whole search (default 20s)")
	searchCmd.Flags().StringSlice("sources", nil, "providers to query (default: all with credentials)")

	_ = viper.BindPFlag("max_results", searchCmd.Flags().Lookup("max-results"))
	_ = viper.BindPFlag("timeout", searchCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("request_timeout", searchCmd.Flags().Lookup("request-timeout"))
	_ = viper.BindPFlag("sources", searchCmd.Flags().Lookup("sources"))

	viper.SetDefault("request_timeout", types.DefaultRequestTimeout)

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	if path, _ := cmd.Flags().GetString("load"); path != "" {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return err
		}
		return renderResult(out, qf.Result, format)
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("provide a query, or --load a saved query file")
	}
	fieldFlag, _ := cmd.Flags().GetString("field")
	field, ok := types.ParseField(fieldFlag)
	if !ok {
		return errors.Newf("unknown field %q: use one of %s", fieldFlag, fieldList())
	}
	offset, _ := cmd.Flags().GetInt("offset")
	if offset < 0 {
		return errors.Newf("offset must not be negative, got %d", offset)
	}

	cfg, err := searchConfig()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	base := search.Base{
		Client:  &http.Client{},
		Logger:  logger,
		Metrics: m,
	}
	adapters, err := search.NewAdapters(cfg, base)
	if err != nil {
		return err
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	if cfg.Cache.Enabled && !noCache {
		store, err := openCache(cfg.Cache)
		if err != nil {
			logger.Warn().Err(err).Msg("response cache unavailable")
		} else {
			defer store.Close()
			adapters = search.WithCache(adapters, store, m)
		}
	}

	priorities, err := sourcePriorities()
	if err != nil {
		return err
	}
	router := search.NewRouter(adapters, search.NewRanker(priorities),
		search.WithLogger(logger),
		search.WithMetrics(m),
		search.WithRequestTimeout(cfg.RequestTimeout),
		search.WithOverfetch(cfg.Overfetch),
		search.WithTotalMultiplier(cfg.TotalMultiplier),
		search.WithDefaultPageSize(cfg.MaxResults),
	)

	req := types.SearchRequest{
		Query:      query,
		Field:      field,
		MaxResults: cfg.MaxResults,
		Offset:     offset,
	}
	res := router.Search(cmd.Context(), req)

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := search.WriteQueryFile(path, req, search.Names(router.Eligible(field)), res); err != nil {
			return err
		}
		logger.Info().Str("file", path).Msg("saved query")
	}
	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return errors.Wrapf(err, "writing metrics file %s", path)
		}
	}

	return renderResult(out, res, format)
}

// searchConfig reads the search settings from viper and fills API keys from
// the secrets directory where config leaves them empty.
func searchConfig() (types.SearchConfig, error) {
	var cfg types.SearchConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing configuration")
	}

	cfg.SemanticScholarAPIKey = loadedSecrets.Get(secrets.SemanticScholarAPIKey, cfg.SemanticScholarAPIKey)
	cfg.PatentsViewAPIKey = loadedSecrets.Get(secrets.PatentsViewAPIKey, cfg.PatentsViewAPIKey)
	cfg.GoogleBooksAPIKey = loadedSecrets.Get(secrets.GoogleBooksAPIKey, cfg.GoogleBooksAPIKey)
	cfg.NCBIAPIKey = loadedSecrets.Get(secrets.NCBIAPIKey, cfg.NCBIAPIKey)
	cfg.ContactEmail = loadedSecrets.Get(secrets.ContactEmail, cfg.ContactEmail)

	return cfg.WithDefaults(), nil
}

// sourcePriorities returns the built-in priority table with any overrides
// from the priorities config key applied.
func sourcePriorities() (search.Priorities, error) {
	p := search.DefaultPriorities()
	var overrides map[string]int
	if err := viper.UnmarshalKey("priorities", &overrides); err != nil {
		return nil, errors.Wrap(err, "parsing priorities")
	}
	for name, v := range overrides {
		p[strings.ToLower(name)] = v
	}
	return p, nil
}

func openCache(cfg types.CacheConfig) (*cache.Store, error) {
	path := cfg.Path
	if path == "" {
		path = cache.DefaultPath()
	}
	return cache.Open(path, cfg.TTL)
}

func renderResult(w io.Writer, res types.SearchResult, format string) error {
	switch format {
	case "table", "":
		search.FormatTable(res, w)
		return nil
	case "json":
		return search.FormatJSON(res, w)
	case "csl":
		return search.FormatCSL(res, w)
	default:
		return errors.Newf("unsupported format %q: use table, json or csl", format)
	}
}

func fieldList() string {
	names := make([]string, len(types.AllFields))
	for i, f := range types.AllFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
