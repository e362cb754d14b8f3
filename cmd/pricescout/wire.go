// cmd/pricescout/wire.go
package main

import (
	"context"
	"fmt"

	"pricescout/internal/adapters/fetch"
	"pricescout/internal/adapters/llm"
	"pricescout/internal/adapters/scrape"
	"pricescout/internal/adapters/serp"
	"pricescout/internal/adapters/sites"
	"pricescout/internal/adapters/sitestore"
	"pricescout/internal/core/ports"
	"pricescout/internal/core/usecases"
	"pricescout/internal/platform/config"
	"pricescout/internal/platform/httpclient"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/policy"
	"pricescout/internal/platform/rate"
	"pricescout/internal/platform/resilience"
	"pricescout/internal/platform/ui"
)

// app is the wired pipeline plus everything that must be closed or checked.
type app struct {
	orchestrator *usecases.PipelineOrchestrator
	store        sitestore.Store
	checkers     []ports.HealthChecker
	fetcher      *fetch.Fetcher
	logger       logx.Logger
}

// Close releases the site store.
func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// buildApp wires adapters into the orchestrator. A site store that cannot be
// opened is logged and skipped; the static table still serves.
func buildApp(ctx context.Context, c config.Config, presenter ui.Presenter, logger logx.Logger) (*app, error) {
	apiClient, err := httpclient.New(httpclient.Config{
		Timeout:    c.LLM.Timeout,
		MaxRetries: c.HTTP.MaxRetries,
		UserAgent:  c.HTTP.UserAgent,
		ProxyURL:   c.HTTP.ProxyURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("api http client: %w", err)
	}
	pageClient, err := httpclient.New(httpclient.Config{
		Timeout:      c.HTTP.FetchTimeout,
		UserAgent:    c.HTTP.UserAgent,
		PerHostRPS:   c.HTTP.PerHostRPS,
		MaxRedirects: c.HTTP.MaxRedirects,
		ProxyURL:     c.HTTP.ProxyURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("page http client: %w", err)
	}

	pol := policy.Default()
	if c.PolicyFile != "" {
		if pol, err = policy.LoadFile(c.PolicyFile); err != nil {
			return nil, fmt.Errorf("policy: %w", err)
		}
	}

	search := serp.New(apiClient, serp.Config{
		APIKey:       c.Search.APIKey,
		Endpoint:     c.Search.Endpoint,
		Engine:       c.Search.Engine,
		GoogleDomain: c.Search.GoogleDomain,
	}, logger)
	model := llm.NewClient(apiClient, llm.Config{
		Endpoint:        c.LLM.Endpoint,
		APIKey:          c.LLM.APIKey,
		Model:           c.LLM.Model,
		Temperature:     c.LLM.Temperature,
		MaxContentChars: c.LLM.MaxContentChars,
		Timeout:         c.LLM.Timeout,
	}, logger)

	breakers := resilience.NewHostBreakers(c.HTTP.BreakerThreshold, c.HTTP.BreakerCooldown, 1)
	fetcher := fetch.New(pageClient, breakers, fetch.Config{
		MaxBodyBytes:  c.HTTP.MaxBodyBytes,
		RespectRobots: c.HTTP.RespectRobots,
		RobotsTTL:     c.HTTP.RobotsTTL,
		UserAgent:     c.HTTP.UserAgent,
	}, logger)

	limiter := rate.New(c.RateLimit.PerMinute,
		rate.WithWindow(c.RateLimit.Window),
		rate.WithBuffer(c.RateLimit.Buffer),
	)
	var strategy usecases.ExtractionStrategy = usecases.NewServiceStrategy(
		llm.NewExtractionService(model), limiter, c.RateLimit.AcquireTimeout, logger)
	if c.Pipeline.Strategy == config.StrategyStructuredFirst {
		profiles, err := scrape.LoadProfiles(c.Sites.File)
		if err != nil {
			return nil, fmt.Errorf("scrape profiles: %w", err)
		}
		strategy = usecases.NewStructuredFirstStrategy(scrape.New(profiles, logger), strategy, logger)
	}

	table, err := sites.LoadTable(c.Sites.File)
	if err != nil {
		return nil, fmt.Errorf("sites table: %w", err)
	}
	a := &app{
		checkers: []ports.HealthChecker{search, model},
		fetcher:  fetcher,
		logger:   logger,
	}
	opts := sites.Options{MemoryCapacity: c.Cache.Capacity, TTL: c.Cache.TTL}
	if c.Cache.Driver != config.CacheNone {
		store, err := sitestore.Open(ctx, c.Cache.Driver, c.Cache.DSN, c.Cache.TTL)
		if err != nil {
			logger.Warn("site store unavailable, continuing without it", "driver", c.Cache.Driver, "error", err.Error())
		} else {
			a.store = store
			opts.Store = store
		}
	}
	if c.Sites.Discover && c.LLM.APIKey != "" {
		opts.Discoverer = llm.NewSiteDiscoverer(model)
	}

	a.orchestrator = usecases.NewPipelineOrchestrator(usecases.PipelineOrchestratorOptions{
		Selector:       sites.NewSelector(table, opts, logger),
		Enhancer:       llm.NewEnhancer(model),
		Prober:         usecases.NewSiteProbe(search, pol, c.Pipeline.ProbeTopResults, logger),
		Extractor:      usecases.NewExtractor(fetcher, strategy, pol, c.HTTP.FetchTimeout, logger),
		Policy:         pol,
		Logger:         logger,
		Presenter:      presenter,
		MaxExtractions: c.Pipeline.MaxExtractions,
		MinResults:     c.Pipeline.MinResults,
		MaxConcurrency: c.Pipeline.MaxConcurrency,
		Strategy:       c.Pipeline.Strategy,
	})
	return a, nil
}
