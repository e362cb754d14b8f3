// cmd/pricescout/cmd_serve.go
package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"pricescout/internal/adapters/httpapi"
	"pricescout/internal/core/domain"
	"pricescout/internal/platform/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Long: `Starts the HTTP API:

  POST /search   {"country": "US", "query": "iphone 16 pro", "max_results": 5}
  GET  /health
  GET  /`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// timeoutSearcher bounds each request with the configured search timeout.
type timeoutSearcher struct {
	next    httpapi.Searcher
	timeout time.Duration
}

func (t timeoutSearcher) Run(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Run(ctx, req)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cfg)
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg, ui.NewNoopPresenter(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close site store", "error", err.Error())
		}
	}()

	var searcher httpapi.Searcher = a.orchestrator
	if cfg.Core.Timeout > 0 {
		searcher = timeoutSearcher{next: a.orchestrator, timeout: cfg.Core.Timeout}
	}

	srv := httpapi.NewServer(searcher, version, logger, a.checkers...)
	srv.SetReady(true)
	return srv.ListenAndServe(ctx, httpapi.ListenConfig{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
}
