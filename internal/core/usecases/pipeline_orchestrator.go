// internal/core/usecases/pipeline_orchestrator.go
package usecases

import (
	"context"
	"fmt"
	"time"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/policy"
	"pricescout/internal/platform/ui"
)

// Valores por defecto de la política de extracción.
const (
	DefaultMaxExtractions = 5
	DefaultMinResults     = 3
)

// URLProber es la unidad de trabajo de URLDiscovery (SiteProbe la implementa).
type URLProber interface {
	Probe(ctx context.Context, query string, site domain.CandidateSite) (domain.CandidateURL, bool)
}

// URLExtractor es la unidad de trabajo de Extraction (Extractor la implementa).
type URLExtractor interface {
	Extract(ctx context.Context, candidate domain.CandidateURL, query string) Outcome
}

// PipelineOrchestrator ejecuta una búsqueda como una secuencia fija de stages:
// SiteSelection, QueryEnhancement, URLDiscovery, Extraction y Consolidation.
// Los stages nunca se solapan; la concurrencia existe solo dentro de un stage.
type PipelineOrchestrator struct {
	selector  ports.SiteSelector
	enhancer  ports.QueryEnhancer
	prober    URLProber
	extractor URLExtractor

	consolidator *Consolidator
	policy       *policy.Policy
	logger       logx.Logger
	presenter    ui.Presenter
	now          func() time.Time

	// Configuración de ejecución
	maxExtractions int
	minResults     int
	maxConcurrency int
	strategy       string
}

// PipelineOrchestratorOptions configura el pipeline orchestrator.
type PipelineOrchestratorOptions struct {
	Selector  ports.SiteSelector
	Enhancer  ports.QueryEnhancer
	Prober    URLProber
	Extractor URLExtractor

	Policy    *policy.Policy
	Logger    logx.Logger
	Presenter ui.Presenter

	// MaxExtractions tope del primer batch de extracción
	MaxExtractions int

	// MinResults mínimo de resultados válidos antes de hacer backfill
	MinResults int

	// MaxConcurrency límite de unidades simultáneas por stage (0 = todas)
	MaxConcurrency int

	// Strategy solo informativo (presenter y logs)
	Strategy string

	// Clock inyectable para tests
	Clock func() time.Time
}

// NewPipelineOrchestrator crea una nueva instancia del pipeline orchestrator.
func NewPipelineOrchestrator(opts PipelineOrchestratorOptions) *PipelineOrchestrator {
	if opts.MaxExtractions <= 0 {
		opts.MaxExtractions = DefaultMaxExtractions
	}
	if opts.MinResults <= 0 {
		opts.MinResults = DefaultMinResults
	}
	if opts.MaxConcurrency < 0 {
		opts.MaxConcurrency = 0
	}
	if opts.Policy == nil {
		opts.Policy = policy.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Presenter == nil {
		opts.Presenter = ui.NewNoopPresenter()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyService
	}

	return &PipelineOrchestrator{
		selector:       opts.Selector,
		enhancer:       opts.Enhancer,
		prober:         opts.Prober,
		extractor:      opts.Extractor,
		consolidator:   NewConsolidator(),
		policy:         opts.Policy,
		logger:         opts.Logger.With("component", "pipeline_orchestrator"),
		presenter:      opts.Presenter,
		now:            opts.Clock,
		maxExtractions: opts.MaxExtractions,
		minResults:     opts.MinResults,
		maxConcurrency: opts.MaxConcurrency,
		strategy:       opts.Strategy,
	}
}

// Run ejecuta el pipeline completo para un request.
// Solo fallan la validación del request, SiteSelection, QueryEnhancement y la
// cancelación del contexto; cualquier otro fallo es una ausencia contada.
func (p *PipelineOrchestrator) Run(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	state := domain.NewPipelineState(req, p.now())
	logger := p.logger.With("request_id", state.RequestID)

	logger.Info("starting search",
		"country", req.Country.String(),
		"query", req.Query,
		"strategy", p.strategy,
		"max_extractions", p.maxExtractions,
		"min_results", p.minResults,
	)

	p.presenter.Start(ui.SearchInfo{
		RequestID:   state.RequestID,
		Country:     req.Country.String(),
		Query:       req.Query,
		Strategy:    p.strategy,
		TotalStages: len(domain.Stages),
	})

	stages := []struct {
		stage domain.Stage
		run   stageFunc
	}{
		{domain.StageSiteSelection, p.selectSites},
		{domain.StageQueryEnhancement, p.enhanceQuery},
		{domain.StageURLDiscovery, p.discoverURLs},
		{domain.StageExtraction, p.extractOffers},
		{domain.StageConsolidation, p.consolidate},
	}

	for i, st := range stages {
		if err := ctx.Err(); err != nil {
			logger.Warn("search cancelled", "stage", string(st.stage), "error", err.Error())
			p.presenter.Error(fmt.Sprintf("search cancelled before %s", stageNames[st.stage]))
			return nil, fmt.Errorf("search cancelled before %s: %w", st.stage, err)
		}

		stageStart := p.now()
		logger.Info("executing stage", "stage_id", i+1, "stage", string(st.stage))

		res, err := st.run(ctx, state)
		duration := p.now().Sub(stageStart)
		if err != nil {
			logger.Warn("stage failed, aborting search",
				"stage", string(st.stage),
				"duration_ms", duration.Milliseconds(),
				"error", err.Error(),
			)
			p.presenter.FinishStage(i+1, "failed", duration)
			p.presenter.Error(err.Error())
			return nil, err
		}

		next := domain.StageDone
		if i+1 < len(stages) {
			next = stages[i+1].stage
		}
		state.Advance(next, stageTrace(st.stage, res, duration))

		logger.Info("stage completed",
			"stage_id", i+1,
			"stage", string(st.stage),
			"duration_ms", duration.Milliseconds(),
			"units", res.Units,
			"produced", res.Produced,
		)
		p.presenter.FinishStage(i+1, res.Summary, duration)
	}

	resp := domain.NewSearchResponse(state, p.now())

	logger.Info("search completed",
		"results", resp.TotalResults,
		"sites", len(state.Sites),
		"urls", len(state.URLs),
		"success", state.Counters.Success,
		"failure", state.Counters.Failure,
		"blocked", state.Counters.Blocked,
		"rate_limited", state.Counters.RateLimited,
		"backfill", state.BackfillUsed,
		"total_duration_ms", resp.SearchTimeMs,
	)

	p.presenter.Finish(ui.SearchStats{
		TotalDuration: time.Duration(resp.SearchTimeMs) * time.Millisecond,
		Results:       resp.TotalResults,
		SitesChecked:  len(state.Sites),
		URLs:          len(state.URLs),
		Success:       state.Counters.Success,
		Failure:       state.Counters.Failure,
		Blocked:       state.Counters.Blocked,
		RateLimited:   state.Counters.RateLimited,
		BackfillUsed:  state.BackfillUsed,
	})

	return resp, nil
}

// selectSites obtiene y normaliza la lista de sitios candidatos.
func (p *PipelineOrchestrator) selectSites(ctx context.Context, state *domain.PipelineState) (StageResult, error) {
	p.startStage(1, domain.StageSiteSelection, 1)

	raw, err := p.selector.Select(ctx, state.Request.Country)
	if err != nil {
		return StageResult{}, fmt.Errorf("%w: %w", domain.ErrSiteSelection, err)
	}

	sites, dropped := domain.NormalizeSites(raw)
	for _, d := range dropped {
		p.logger.Warn("dropping invalid site", "domain", d)
	}
	state.Sites = sites

	if len(sites) == 0 {
		state.AddError(fmt.Sprintf("no candidate sites for country %s", state.Request.Country))
	}

	return StageResult{
		Units:    1,
		Produced: len(sites),
		Summary:  fmt.Sprintf("%d site(s) selected", len(sites)),
	}, nil
}

// enhanceQuery produce la consulta mejorada; marca + calificador en la
// consulta original evita la llamada al enhancer.
func (p *PipelineOrchestrator) enhanceQuery(ctx context.Context, state *domain.PipelineState) (StageResult, error) {
	p.startStage(2, domain.StageQueryEnhancement, 1)

	raw := state.Request.Query
	if p.policy.HasBrand(raw) && p.policy.HasQualifier(raw) {
		state.EnhancedQuery = raw
		state.QueryShortcut = true
		p.logger.Debug("query already specific, skipping enhancer", "query", raw)
		return StageResult{Units: 1, Produced: 1, Summary: "query already specific"}, nil
	}

	enhanced, err := p.enhancer.Enhance(ctx, raw, state.Request.Country)
	if err != nil {
		return StageResult{}, fmt.Errorf("%w: %w", domain.ErrQueryEnhancement, err)
	}
	if enhanced == "" {
		enhanced = raw
	}
	state.EnhancedQuery = enhanced

	p.logger.Debug("query enhanced", "original", raw, "enhanced", enhanced)
	return StageResult{Units: 1, Produced: 1, Summary: fmt.Sprintf("%q", enhanced)}, nil
}

// discoverURLs lanza un probe por sitio y conserva las URLs presentes en
// orden de sitio.
func (p *PipelineOrchestrator) discoverURLs(ctx context.Context, state *domain.PipelineState) (StageResult, error) {
	sites := state.Sites
	p.startStage(3, domain.StageURLDiscovery, len(sites))

	type probeOutcome struct {
		url     domain.CandidateURL
		present bool
	}

	outcomes := runUnits(ctx, p.maxConcurrency, sites, func(ctx context.Context, site domain.CandidateSite) probeOutcome {
		start := p.now()
		u, ok := p.prober.Probe(ctx, state.EnhancedQuery, site)
		status := ui.StatusSuccess
		if !ok {
			status = ui.StatusError
		}
		p.presenter.FinishUnit(3, site.Domain, status, p.now().Sub(start))
		return probeOutcome{url: u, present: ok}
	})

	urls := make([]domain.CandidateURL, 0, len(outcomes))
	for _, o := range outcomes {
		if o.present {
			urls = append(urls, o.url)
		}
	}
	state.URLs = urls

	if len(sites) > 0 && len(urls) == 0 {
		state.AddError("no product URLs discovered")
	}

	return StageResult{
		Units:    len(sites),
		Produced: len(urls),
		Summary:  fmt.Sprintf("%d/%d site(s) returned a product URL", len(urls), len(sites)),
	}, nil
}

// planFirstBatch decide cuántas URLs procesar en el primer batch: todas si
// N <= minResults, si no las primeras maxBatch.
func planFirstBatch(n, maxBatch, minResults int) int {
	if n <= minResults || maxBatch > n {
		return n
	}
	return maxBatch
}

// planBackfill decide el tamaño del batch de backfill: hasta (minResults - valid)
// URLs de las restantes, solo si faltan resultados.
func planBackfill(n, processed, valid, minResults int) int {
	if valid >= minResults || processed >= n {
		return 0
	}
	need := minResults - valid
	if remaining := n - processed; need > remaining {
		need = remaining
	}
	return need
}

// extractOffers ejecuta el primer batch y, si hace falta, un único batch de
// backfill. Los resultados se agregan en orden de descubrimiento.
func (p *PipelineOrchestrator) extractOffers(ctx context.Context, state *domain.PipelineState) (StageResult, error) {
	urls := state.URLs
	n := len(urls)
	first := planFirstBatch(n, p.maxExtractions, p.minResults)
	p.startStage(4, domain.StageExtraction, first)

	p.runExtractionBatch(ctx, state, urls[:first])
	processed := first

	if extra := planBackfill(n, processed, len(state.Results), p.minResults); extra > 0 {
		p.logger.Info("backfilling extraction",
			"valid", len(state.Results),
			"min_results", p.minResults,
			"extra_urls", extra,
		)
		p.presenter.Info(fmt.Sprintf("only %d valid result(s), trying %d more URL(s)", len(state.Results), extra))
		state.BackfillUsed = true
		p.presenter.AddUnits(4, extra)
		p.runExtractionBatch(ctx, state, urls[processed:processed+extra])
		processed += extra
	}

	if state.Counters.Blocked > 0 {
		state.AddError(fmt.Sprintf("%d page(s) blocked by bot checks", state.Counters.Blocked))
	}

	return StageResult{
		Units:    processed,
		Produced: len(state.Results),
		Summary: fmt.Sprintf("%d valid of %d attempted (blocked %d, rate limited %d)",
			len(state.Results), processed, state.Counters.Blocked, state.Counters.RateLimited),
	}, nil
}

// runExtractionBatch extrae un batch concurrentemente y acumula en el estado
// en el orden del batch, no en el de finalización.
func (p *PipelineOrchestrator) runExtractionBatch(ctx context.Context, state *domain.PipelineState, batch []domain.CandidateURL) {
	query := state.EnhancedQuery
	outcomes := runUnits(ctx, p.maxConcurrency, batch, func(ctx context.Context, u domain.CandidateURL) Outcome {
		o := p.extractor.Extract(ctx, u, query)
		label := u.Domain
		if !o.Present() {
			label += " (" + o.Reason.String() + ")"
		}
		p.presenter.FinishUnit(4, label, unitStatus(o), o.Duration)
		return o
	})

	state.Attempted += len(batch)
	for _, o := range outcomes {
		if o.Throttled {
			state.Counters.RateLimited++
		}
		if o.Present() {
			state.Counters.Success++
			state.Results = append(state.Results, *o.Result)
			continue
		}
		state.Counters.Failure++
		if o.Reason == domain.ReasonBlocked {
			state.Counters.Blocked++
		}
	}
}

// consolidate deduplica, ordena y trunca a MaxResults.
func (p *PipelineOrchestrator) consolidate(ctx context.Context, state *domain.PipelineState) (StageResult, error) {
	p.startStage(5, domain.StageConsolidation, 0)

	before := len(state.Results)
	results := p.consolidator.Consolidate(state.Results)
	results = p.consolidator.Truncate(results, state.Request.MaxResults)
	state.Results = results

	return StageResult{
		Units:    before,
		Produced: len(results),
		Summary:  fmt.Sprintf("%d offer(s) after dedup and ranking", len(results)),
	}, nil
}

func (p *PipelineOrchestrator) startStage(number int, stage domain.Stage, units int) {
	p.presenter.StartStage(ui.StageInfo{
		Number:      number,
		TotalStages: len(domain.Stages),
		Name:        stageNames[stage],
		Units:       units,
	})
}
