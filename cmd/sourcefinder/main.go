// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sourcefinder CLI.
// Subcommands: search (fan-out bibliographic search), cache (response cache
// maintenance) and version.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sourcefinder/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is configured from --log-level before any subcommand runs.
	logger = zerolog.Nop()

	// loadedSecrets holds API keys loaded from the secrets directory at startup.
	loadedSecrets = secrets.Secrets{}
)

// rootCmd is the base command for the sourcefinder CLI.
var rootCmd = &cobra.Command{
	Use:   "sourcefinder",
	Short: "Search bibliographic providers for books, papers and patents",
	Long: `sourcefinder sends one query to several bibliographic metadata providers
(Crossref, OpenAlex, PubMed, Semantic Scholar, arXiv, Open Library,
PatentsView, Google Books) concurrently, merges duplicate records across
providers and prints one ranked page of suggestions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(viper.GetString("log_level"))

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sourcefinder.yaml or ~/.config/sourcefinder/sourcefinder.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of API key files")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))

	viper.SetDefault("cache.enabled", true)
	bindEnv()
}

// envKeys are the config keys readable from SOURCEFINDER_* variables.
// Unmarshal only sees keys viper already knows, so each one is bound.
var envKeys = []string{
	"timeout", "user_agent", "max_results", "request_timeout",
	"overfetch", "total_multiplier", "sources", "contact_email",
	"semantic_scholar_api_key", "google_books_api_key", "ncbi_api_key", "patentsview_api_key",
	"cache.enabled", "cache.path", "cache.ttl",
	"log_level", "secrets_dir",
}

// bindEnv maps nested keys such as cache.ttl to SOURCEFINDER_CACHE_TTL.
func bindEnv() {
	viper.SetEnvPrefix("SOURCEFINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sourcefinder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sourcefinder"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		l := newLogger(viper.GetString("log_level"))
		l.Info().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

// newLogger returns a console logger on stderr at the named level.
func newLogger(level string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(levelOf(level)).
		With().
		Timestamp().
		Logger()
}

func levelOf(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
