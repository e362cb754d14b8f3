// cmd/pricescout/cmd_sites.go
package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"pricescout/internal/adapters/sites"
	"pricescout/internal/adapters/sitestore"
	"pricescout/internal/core/domain"
	"pricescout/internal/platform/config"
)

var sitesCmd = &cobra.Command{
	Use:   "sites [country]",
	Short: "Show the site table and the cached site lists",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSites,
}

func runSites(cmd *cobra.Command, args []string) error {
	table, err := sites.LoadTable(cfg.Sites.File)
	if err != nil {
		return err
	}

	countries := table.Countries()
	if len(args) == 1 {
		c, err := domain.ParseCountry(args[0])
		if err != nil {
			return err
		}
		countries = []domain.CountryCode{c}
	}

	out := cmd.OutOrStdout()
	for _, c := range countries {
		fmt.Fprintf(out, "%s (table)\n", c)
		printSites(out, table.Lookup(c))
	}

	if cfg.Cache.Driver == config.CacheNone {
		return nil
	}
	store, err := sitestore.Open(cmd.Context(), cfg.Cache.Driver, cfg.Cache.DSN, cfg.Cache.TTL)
	if err != nil {
		return fmt.Errorf("open site store: %w", err)
	}
	defer store.Close()

	entries, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, e := range entries {
		if len(args) == 1 && e.Country != countries[0] {
			continue
		}
		state := "fresh"
		if time.Since(e.LastUpdated) >= cfg.Cache.TTL {
			state = "expired"
		}
		fmt.Fprintf(out, "%s (cached %s, %s)\n", e.Country, e.LastUpdated.Local().Format(time.RFC3339), state)
		printSites(out, e.Sites)
	}
	return nil
}

func printSites(w io.Writer, list []domain.CandidateSite) {
	for i, s := range list {
		fmt.Fprintf(w, "  %d. %-28s %s\n", i+1, s.Domain, s.BaseURL)
	}
}
