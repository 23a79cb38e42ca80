// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sourcefinder/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the response cache",
	Long: `Cache manages the local SQLite store of provider responses. Entries
expire after the configured TTL (cache.ttl, default 24h).`,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the cache location and entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, path, err := openConfiguredCache()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Len(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", path, n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached response",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openConfiguredCache()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", n)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached responses older than a duration",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")

		store, _, err := openConfiguredCache()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Prune(cmd.Context(), olderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", n)
		return nil
	},
}

// openConfiguredCache opens the cache named by configuration, or the
// default location.
func openConfiguredCache() (*cache.Store, string, error) {
	cfg, err := searchConfig()
	if err != nil {
		return nil, "", err
	}
	c := cfg.Cache
	if c.Path == "" {
		c.Path = cache.DefaultPath()
	}
	store, err := openCache(c)
	return store, c.Path, err
}

func init() {
	cachePruneCmd.Flags().Duration("older-than", 0, "age threshold (default: the cache TTL)")

	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	rootCmd.AddCommand(cacheCmd)
}
