// internal/core/domain/result.go
package domain

import (
	"fmt"
	"math"
	"strings"
)

// Confianza asignada según la estrategia que produjo el resultado.
const (
	ConfidenceService    = 0.7
	ConfidenceStructured = 0.9
)

// DefaultAvailability se usa cuando el colaborador no informa disponibilidad.
const DefaultAvailability = "unknown"

// CandidateURL es una página concreta de un CandidateSite.
type CandidateURL struct {
	Domain string `json:"domain"`
	URL    string `json:"url"`
}

// SearchHit es un resultado orgánico del buscador.
type SearchHit struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Page es el contenido crudo de una página descargada.
type Page struct {
	// URL pedida
	URL string

	// FinalURL tras seguir redirects
	FinalURL string

	StatusCode  int
	ContentType string
	Body        []byte
}

// HTML retorna el body como string.
func (p *Page) HTML() string {
	if p == nil {
		return ""
	}
	return string(p.Body)
}

// ProductInfo es la salida sin validar de un extractor (servicio o scraper).
type ProductInfo struct {
	ProductName  string   `json:"product_name"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	Availability string   `json:"availability"`
	Rating       *float64 `json:"rating,omitempty"`
}

// ExtractionResult es una oferta validada. Inmutable una vez construida.
type ExtractionResult struct {
	ProductName     string   `json:"product_name"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	Availability    string   `json:"availability"`
	SiteName        string   `json:"site_name"`
	Link            string   `json:"link"`
	Rating          *float64 `json:"rating,omitempty"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// NewExtractionResult construye el resultado a partir de la salida del
// extractor. Link siempre es la URL candidata, nunca la que devolvió el
// colaborador.
func NewExtractionResult(info ProductInfo, candidate CandidateURL, confidence float64) (*ExtractionResult, error) {
	name := strings.TrimSpace(info.ProductName)
	if name == "" {
		return nil, fmt.Errorf("%w: empty product name", ErrInvalidResult)
	}
	if math.IsNaN(info.Price) || math.IsInf(info.Price, 0) || info.Price <= 0 {
		return nil, fmt.Errorf("%w: price %v", ErrInvalidResult, info.Price)
	}

	availability := strings.TrimSpace(info.Availability)
	if availability == "" {
		availability = DefaultAvailability
	}

	return &ExtractionResult{
		ProductName:     name,
		Price:           info.Price,
		Currency:        strings.TrimSpace(info.Currency),
		Availability:    availability,
		SiteName:        candidate.Domain,
		Link:            candidate.URL,
		Rating:          info.Rating,
		ConfidenceScore: clamp01(confidence),
	}, nil
}

// Key identifica un resultado para deduplicación: nombre normalizado + sitio.
func (r *ExtractionResult) Key() string {
	return strings.ToLower(strings.TrimSpace(r.ProductName)) + "|" + r.SiteName
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// AbsenceReason explica por qué una unidad de trabajo no produjo resultado.
type AbsenceReason string

const (
	ReasonNone             AbsenceReason = ""
	ReasonFetchFailed      AbsenceReason = "fetch_failed"
	ReasonExtractionFailed AbsenceReason = "extraction_failed"
	ReasonNoProduct        AbsenceReason = "no_product"
	ReasonInvalid          AbsenceReason = "invalid"
	ReasonIrrelevant       AbsenceReason = "irrelevant"
	ReasonBlocked          AbsenceReason = "blocked"
)

// String implementa fmt.Stringer.
func (r AbsenceReason) String() string {
	if r == ReasonNone {
		return "none"
	}
	return string(r)
}
