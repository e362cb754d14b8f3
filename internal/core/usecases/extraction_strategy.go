// internal/core/usecases/extraction_strategy.go
package usecases

import (
	"context"
	"fmt"
	"time"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/errors"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/rate"
)

// Nombres de estrategia aceptados en configuración.
const (
	StrategyService         = "service"
	StrategyStructuredFirst = "structured-first"
)

// StrategyResult es la salida de una estrategia de extracción.
type StrategyResult struct {
	// Info nil = la página no tiene producto
	Info *domain.ProductInfo

	Confidence float64

	// Method indica quién produjo Info ("service" o "structured")
	Method string

	// Throttled se activa si el limiter hizo esperar o el servicio respondió 429
	Throttled bool
}

// ExtractionStrategy es la capacidad de convertir una página en un producto.
type ExtractionStrategy interface {
	Name() string
	Extract(ctx context.Context, page *domain.Page, site, query string) (StrategyResult, error)
}

// ServiceStrategy delega en el ExtractionService, pasando siempre por el
// RateLimiter compartido.
type ServiceStrategy struct {
	service        ports.ExtractionService
	limiter        *rate.Limiter
	acquireTimeout time.Duration
	logger         logx.Logger
}

// NewServiceStrategy crea la estrategia. acquireTimeout 0 = solo el contexto.
func NewServiceStrategy(service ports.ExtractionService, limiter *rate.Limiter, acquireTimeout time.Duration, logger logx.Logger) *ServiceStrategy {
	if logger == nil {
		logger = logx.Nop()
	}
	return &ServiceStrategy{
		service:        service,
		limiter:        limiter,
		acquireTimeout: acquireTimeout,
		logger:         logger.With("component", "service_strategy"),
	}
}

func (s *ServiceStrategy) Name() string { return StrategyService }

// Extract espera turno en el limiter y llama al servicio.
func (s *ServiceStrategy) Extract(ctx context.Context, page *domain.Page, site, query string) (StrategyResult, error) {
	res := StrategyResult{Confidence: domain.ConfidenceService, Method: StrategyService}

	if s.limiter != nil {
		acquireCtx := ctx
		if s.acquireTimeout > 0 {
			var cancel context.CancelFunc
			acquireCtx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
			defer cancel()
		}

		waited, err := s.limiter.Acquire(acquireCtx)
		if waited > 0 {
			res.Throttled = true
			s.logger.Debug("rate limiter delayed extraction", "site", site, "waited_ms", waited.Milliseconds())
		}
		if err != nil {
			res.Throttled = true
			return res, fmt.Errorf("waiting for extraction slot: %w", err)
		}
	}

	info, err := s.service.Extract(ctx, page.HTML(), site, query)
	if err != nil {
		if errors.IsRateLimit(err) {
			res.Throttled = true
		}
		return res, errors.Wrap(err, "extraction service")
	}
	res.Info = info
	return res, nil
}

// StructuredFirstStrategy intenta primero el scraper de selectores y cae al
// servicio si el sitio no tiene perfil o el scrape falla.
type StructuredFirstStrategy struct {
	scraper  ports.PageScraper
	fallback ExtractionStrategy
	logger   logx.Logger
}

// NewStructuredFirstStrategy crea la estrategia con su fallback.
func NewStructuredFirstStrategy(scraper ports.PageScraper, fallback ExtractionStrategy, logger logx.Logger) *StructuredFirstStrategy {
	if logger == nil {
		logger = logx.Nop()
	}
	return &StructuredFirstStrategy{
		scraper:  scraper,
		fallback: fallback,
		logger:   logger.With("component", "structured_strategy"),
	}
}

func (s *StructuredFirstStrategy) Name() string { return StrategyStructuredFirst }

func (s *StructuredFirstStrategy) Extract(ctx context.Context, page *domain.Page, site, query string) (StrategyResult, error) {
	if s.scraper != nil && s.scraper.Supports(site) {
		info, err := s.scraper.Scrape(ctx, page, site)
		if err == nil && info != nil {
			return StrategyResult{Info: info, Confidence: domain.ConfidenceStructured, Method: "structured"}, nil
		}
		if err != nil {
			s.logger.Debug("structured scrape failed, falling back", "site", site, "error", err.Error())
		}
	}
	return s.fallback.Extract(ctx, page, site, query)
}
