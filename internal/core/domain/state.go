// internal/core/domain/state.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage identifica cada estado de la máquina del pipeline.
type Stage string

const (
	StageSiteSelection    Stage = "site_selection"
	StageQueryEnhancement Stage = "query_enhancement"
	StageURLDiscovery     Stage = "url_discovery"
	StageExtraction       Stage = "extraction"
	StageConsolidation    Stage = "consolidation"
	StageDone             Stage = "done"
)

// Stages en orden de ejecución (sin Done).
var Stages = []Stage{
	StageSiteSelection,
	StageQueryEnhancement,
	StageURLDiscovery,
	StageExtraction,
	StageConsolidation,
}

// Counters acumula los contadores de extracción de una búsqueda.
type Counters struct {
	Success     int `json:"success"`
	Failure     int `json:"failure"`
	Blocked     int `json:"blocked"`
	RateLimited int `json:"rate_limited"`
}

// StageTrace registra la ejecución de un stage.
type StageTrace struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
	Units    int           `json:"units"`
	Produced int           `json:"produced"`
}

// PipelineState es el acumulador de una búsqueda. Lo posee un único
// orquestador durante la vida del request.
type PipelineState struct {
	RequestID string
	Request   SearchRequest
	StartedAt time.Time

	// Stage actual
	Stage Stage

	EnhancedQuery string
	QueryShortcut bool
	Sites         []CandidateSite
	URLs          []CandidateURL
	Results       []ExtractionResult
	Attempted     int
	BackfillUsed  bool
	Counters      Counters
	Errors        []string
	Trace         []StageTrace
}

// NewPipelineState crea el estado inicial con un request ID nuevo.
func NewPipelineState(req SearchRequest, now time.Time) *PipelineState {
	return &PipelineState{
		RequestID: uuid.NewString(),
		Request:   req,
		StartedAt: now,
		Stage:     StageSiteSelection,
		Sites:     []CandidateSite{},
		URLs:      []CandidateURL{},
		Results:   []ExtractionResult{},
		Errors:    []string{},
	}
}

// AddError registra un error no fatal.
func (s *PipelineState) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// Advance registra la traza del stage actual y pasa al siguiente.
func (s *PipelineState) Advance(next Stage, trace StageTrace) {
	s.Trace = append(s.Trace, trace)
	s.Stage = next
}
