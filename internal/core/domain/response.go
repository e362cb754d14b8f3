// internal/core/domain/response.go
package domain

import "time"

// SearchResponse es la salida de una búsqueda, con el formato JSON de la API.
type SearchResponse struct {
	Success      bool               `json:"success"`
	TotalResults int                `json:"total_results"`
	SearchTimeMs int64              `json:"search_time_ms"`
	Results      []ExtractionResult `json:"results"`
	Errors       []string           `json:"errors"`
	Metadata     ResponseMetadata   `json:"metadata"`
}

// ResponseMetadata resume cómo se obtuvo la respuesta.
type ResponseMetadata struct {
	RequestID            string   `json:"request_id"`
	Country              string   `json:"country"`
	Query                string   `json:"query"`
	EnhancedQuery        string   `json:"enhanced_query"`
	SitesChecked         []string `json:"sites_checked"`
	URLsDiscovered       int      `json:"urls_discovered"`
	ExtractionsAttempted int      `json:"extractions_attempted"`
	BackfillUsed         bool     `json:"backfill_used"`
	Stats                Counters `json:"stats"`
}

// NewSearchResponse construye la respuesta final a partir del estado.
func NewSearchResponse(state *PipelineState, finishedAt time.Time) *SearchResponse {
	sites := make([]string, 0, len(state.Sites))
	for _, s := range state.Sites {
		sites = append(sites, s.Domain)
	}

	results := state.Results
	if results == nil {
		results = []ExtractionResult{}
	}
	errs := state.Errors
	if errs == nil {
		errs = []string{}
	}

	return &SearchResponse{
		Success:      true,
		TotalResults: len(results),
		SearchTimeMs: finishedAt.Sub(state.StartedAt).Milliseconds(),
		Results:      results,
		Errors:       errs,
		Metadata: ResponseMetadata{
			RequestID:            state.RequestID,
			Country:              state.Request.Country.String(),
			Query:                state.Request.Query,
			EnhancedQuery:        state.EnhancedQuery,
			SitesChecked:         sites,
			URLsDiscovered:       len(state.URLs),
			ExtractionsAttempted: state.Attempted,
			BackfillUsed:         state.BackfillUsed,
			Stats:                state.Counters,
		},
	}
}
