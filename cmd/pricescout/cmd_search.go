// cmd/pricescout/cmd_search.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pricescout/internal/adapters/output"
	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/config"
	"pricescout/internal/platform/ui"
)

var searchFlags struct {
	minConfidence float64
	raw           bool
}

var searchCmd = &cobra.Command{
	Use:   "search [flags] <query>",
	Short: "Search offers for a product",
	Example: config.SearchExamples,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.Float64Var(&searchFlags.minConfidence, "min-confidence", 0, "Hide offers below this confidence (0-1)")
	f.BoolVar(&searchFlags.raw, "raw", false, "Plain progress lines instead of spinners")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg.Core.Query = strings.Join(args, " ")
	if cfg.Core.Country == "" {
		cfg.Core.Country = string(domain.CountryUS)
	}
	logger := newLogger(cfg)

	presenter := selectPresenter(cfg, searchFlags.raw)
	defer presenter.Close()

	ctx := cmd.Context()
	if cfg.Core.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Core.Timeout)
		defer cancel()
	}

	a, err := buildApp(ctx, cfg, presenter, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close site store", "error", err.Error())
		}
	}()

	req := domain.SearchRequest{
		Country:    domain.CountryCode(cfg.Core.Country),
		Query:      cfg.Core.Query,
		MaxResults: cfg.Core.MaxResults,
	}
	resp, err := a.orchestrator.Run(ctx, req)
	if err != nil {
		return err
	}
	if open := a.fetcher.OpenHosts(); len(open) > 0 {
		logger.Info("hosts with open circuit", "hosts", strings.Join(open, ","))
	}

	opts := ports.DefaultExportOptions()
	opts.MinConfidence = searchFlags.minConfidence
	exp, err := output.New(cfg.Core.Output, opts)
	if err != nil {
		return err
	}
	if err := exp.Export(resp, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("%s output: %w", exp.Name(), err)
	}

	if cfg.Core.OutputDir != "" {
		path, err := output.WriteFile(cfg.Core.OutputDir, resp, output.NewJSONExporter(opts))
		if err != nil {
			return err
		}
		logger.Info("response saved", "file", path)
	}
	return nil
}

// selectPresenter keeps stdout clean for machine-readable output.
func selectPresenter(c config.Config, raw bool) ui.Presenter {
	switch {
	case c.Core.Quiet || c.Core.Output != config.OutputTable:
		return ui.NewNoopPresenter()
	case raw:
		return ui.NewRawPresenter(os.Stderr)
	default:
		return ui.NewPTermPresenter()
	}
}
