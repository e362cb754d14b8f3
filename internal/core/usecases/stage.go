// internal/core/usecases/stage.go
package usecases

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"pricescout/internal/core/domain"
	"pricescout/internal/platform/ui"
)

// stageNames nombres legibles para logs y presenter.
var stageNames = map[domain.Stage]string{
	domain.StageSiteSelection:    "Site Selection",
	domain.StageQueryEnhancement: "Query Enhancement",
	domain.StageURLDiscovery:     "URL Discovery",
	domain.StageExtraction:       "Extraction",
	domain.StageConsolidation:    "Consolidation",
}

// StageResult encapsula lo que reporta un stage al terminar.
type StageResult struct {
	// Units unidades de trabajo lanzadas (sitios, URLs, ...)
	Units int

	// Produced elementos producidos para el siguiente stage
	Produced int

	// Summary resumen para el presenter
	Summary string
}

// stageFunc ejecuta un stage sobre el estado. Solo SiteSelection y
// QueryEnhancement pueden devolver error.
type stageFunc func(ctx context.Context, state *domain.PipelineState) (StageResult, error)

// runUnits ejecuta fn para cada item con concurrencia acotada y espera a que
// terminen todos. out[i] corresponde a items[i]. limit <= 0 = sin límite.
// fn no devuelve error: la ausencia es un valor, así el join siempre completa.
func runUnits[T, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			out[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// unitStatus traduce un outcome a estado visual.
func unitStatus(o Outcome) ui.Status {
	switch {
	case o.Present():
		return ui.StatusSuccess
	case o.Reason == domain.ReasonBlocked:
		return ui.StatusWarning
	default:
		return ui.StatusError
	}
}

func stageTrace(stage domain.Stage, res StageResult, d time.Duration) domain.StageTrace {
	return domain.StageTrace{
		Stage:    stage,
		Duration: d,
		Units:    res.Units,
		Produced: res.Produced,
	}
}
