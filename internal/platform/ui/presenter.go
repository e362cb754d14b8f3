// internal/platform/ui/presenter.go
package ui

import (
	"time"
)

// Presenter muestra el progreso de una búsqueda a medida que avanza por los
// stages del pipeline. Las implementaciones deben ser seguras para llamadas
// concurrentes: FinishUnit se invoca desde las goroutines de cada stage.
type Presenter interface {
	// Start inicia la presentación con la información de la búsqueda
	Start(info SearchInfo)

	// StartStage notifica el inicio de un stage
	StartStage(stage StageInfo)

	// AddUnits amplía el total de unidades de un stage ya iniciado (backfill)
	AddUnits(stageNum int, n int)

	// FinishUnit notifica el fin de una unidad de trabajo (un sitio, una URL)
	FinishUnit(stageNum int, label string, status Status, duration time.Duration)

	// FinishStage notifica la finalización de un stage con un resumen corto
	FinishStage(stageNum int, summary string, duration time.Duration)

	Info(msg string)
	Warning(msg string)
	Error(msg string)

	// Finish cierra la presentación con las estadísticas finales
	Finish(stats SearchStats)

	// Close libera spinners u otros recursos
	Close() error
}

// SearchInfo contiene la información inicial de la búsqueda
type SearchInfo struct {
	RequestID   string
	Country     string
	Query       string
	Strategy    string
	TotalStages int
}

// StageInfo contiene información de un stage
type StageInfo struct {
	Number      int
	TotalStages int
	Name        string
	Units       int // unidades concurrentes que se lanzan (0 si no aplica)
}

// SearchStats contiene las estadísticas finales
type SearchStats struct {
	TotalDuration time.Duration
	Results       int
	SitesChecked  int
	URLs          int
	Success       int
	Failure       int
	Blocked       int
	RateLimited   int
	BackfillUsed  bool
}
