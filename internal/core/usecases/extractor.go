// internal/core/usecases/extractor.go
package usecases

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/policy"
)

// DefaultFetchTimeout acota cada descarga de página.
const DefaultFetchTimeout = 15 * time.Second

// Outcome es el resultado de una unidad de extracción: Result presente o
// Reason con el motivo de la ausencia.
type Outcome struct {
	Result    *domain.ExtractionResult
	Reason    domain.AbsenceReason
	Throttled bool
	Duration  time.Duration
}

// Present indica si la unidad produjo un resultado válido.
func (o Outcome) Present() bool {
	return o.Result != nil
}

// Extractor descarga una página, extrae el producto con la estrategia
// configurada y valida el resultado. Nunca retorna errores: los fallos se
// loguean y se convierten en ausencia.
type Extractor struct {
	fetcher      ports.PageFetcher
	strategy     ExtractionStrategy
	policy       *policy.Policy
	fetchTimeout time.Duration
	logger       logx.Logger
}

// NewExtractor crea un extractor. fetchTimeout <= 0 usa DefaultFetchTimeout.
func NewExtractor(fetcher ports.PageFetcher, strategy ExtractionStrategy, pol *policy.Policy, fetchTimeout time.Duration, logger logx.Logger) *Extractor {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	if pol == nil {
		pol = policy.Default()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Extractor{
		fetcher:      fetcher,
		strategy:     strategy,
		policy:       pol,
		fetchTimeout: fetchTimeout,
		logger:       logger.With("component", "extractor"),
	}
}

// Extract procesa una URL candidata.
func (e *Extractor) Extract(ctx context.Context, candidate domain.CandidateURL, query string) Outcome {
	start := time.Now()
	out := e.extract(ctx, candidate, query)
	out.Duration = time.Since(start)

	if out.Present() {
		e.logger.Debug("extraction succeeded",
			"site", candidate.Domain,
			"product", out.Result.ProductName,
			"price", out.Result.Price,
			"duration_ms", out.Duration.Milliseconds(),
		)
	} else {
		e.logger.Debug("extraction absent",
			"site", candidate.Domain,
			"reason", out.Reason.String(),
			"duration_ms", out.Duration.Milliseconds(),
		)
	}
	return out
}

func (e *Extractor) extract(ctx context.Context, candidate domain.CandidateURL, query string) Outcome {
	page, err := e.fetcher.Fetch(ctx, candidate.URL, e.fetchTimeout)
	if err != nil || page == nil {
		if err != nil {
			e.logger.Warn("fetch failed", "site", candidate.Domain, "url", candidate.URL, "error", err.Error())
		}
		return Outcome{Reason: domain.ReasonFetchFailed}
	}

	res, err := e.strategy.Extract(ctx, page, candidate.Domain, query)
	if err != nil {
		e.logger.Warn("extraction failed", "site", candidate.Domain, "strategy", e.strategy.Name(), "error", err.Error())
		return Outcome{Reason: domain.ReasonExtractionFailed, Throttled: res.Throttled}
	}
	if res.Info == nil {
		return Outcome{Reason: domain.ReasonNoProduct, Throttled: res.Throttled}
	}

	reason := e.validate(res.Info, query)
	if reason != domain.ReasonNone {
		e.logger.Debug("extraction rejected",
			"site", candidate.Domain,
			"reason", reason.String(),
			"product", res.Info.ProductName,
		)
		return Outcome{Reason: reason, Throttled: res.Throttled}
	}

	result, err := domain.NewExtractionResult(*res.Info, candidate, res.Confidence)
	if err != nil {
		return Outcome{Reason: domain.ReasonInvalid, Throttled: res.Throttled}
	}
	return Outcome{Result: result, Throttled: res.Throttled}
}

// validate aplica las reglas en orden: nombre y precio, frases bloqueadas,
// relevancia y por último detección de CAPTCHA.
func (e *Extractor) validate(info *domain.ProductInfo, query string) domain.AbsenceReason {
	name := strings.TrimSpace(info.ProductName)
	if name == "" || !(info.Price > 0) {
		return domain.ReasonInvalid
	}
	if e.policy.ContainsBlockedPhrase(name) {
		return domain.ReasonInvalid
	}
	if !e.relevant(name, query) {
		return domain.ReasonIrrelevant
	}
	if e.policy.IsBotChallenge(name + " " + info.Availability) {
		e.logger.Warn("bot challenge detected", "product", name)
		return domain.ReasonBlocked
	}
	return domain.ReasonNone
}

// relevant acepta si algún token significativo de la query aparece en el
// nombre, o si el nombre es plausible (largo > 5 y sin frases de error).
func (e *Extractor) relevant(name, query string) bool {
	tokens := e.policy.SignificantTokens(query)
	if len(tokens) == 0 {
		return true
	}

	lower := strings.ToLower(name)
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return utf8.RuneCountInString(name) > 5 && !e.policy.ContainsErrorPhrase(name)
}
