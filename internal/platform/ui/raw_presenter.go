// internal/platform/ui/raw_presenter.go
package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RawPresenter escribe el progreso como líneas logfmt sin colores, para
// terminales no interactivas o salida redirigida a archivo.
type RawPresenter struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewRawPresenter crea un RawPresenter que escribe en out
func NewRawPresenter(out io.Writer) *RawPresenter {
	return &RawPresenter{out: out, now: time.Now}
}

func (r *RawPresenter) Start(info SearchInfo) {
	r.log("INFO", "search started",
		"request_id", info.RequestID,
		"country", info.Country,
		"query", info.Query,
		"strategy", info.Strategy,
	)
}

func (r *RawPresenter) StartStage(stage StageInfo) {
	r.log("INFO", "stage started",
		"stage", stage.Number,
		"name", stage.Name,
		"units", stage.Units,
	)
}

func (r *RawPresenter) AddUnits(stageNum int, n int) {
	r.log("INFO", "stage units added",
		"stage", stageNum,
		"added", n,
	)
}

func (r *RawPresenter) FinishUnit(stageNum int, label string, status Status, duration time.Duration) {
	r.log("INFO", "unit finished",
		"stage", stageNum,
		"unit", label,
		"status", status.String(),
		"duration_ms", duration.Milliseconds(),
	)
}

func (r *RawPresenter) FinishStage(stageNum int, summary string, duration time.Duration) {
	r.log("INFO", "stage finished",
		"stage", stageNum,
		"summary", summary,
		"duration_ms", duration.Milliseconds(),
	)
}

func (r *RawPresenter) Info(msg string)    { r.log("INFO", msg) }
func (r *RawPresenter) Warning(msg string) { r.log("WARN", msg) }
func (r *RawPresenter) Error(msg string)   { r.log("ERROR", msg) }

func (r *RawPresenter) Finish(stats SearchStats) {
	r.log("INFO", "search finished",
		"duration_ms", stats.TotalDuration.Milliseconds(),
		"results", stats.Results,
		"sites", stats.SitesChecked,
		"urls", stats.URLs,
		"success", stats.Success,
		"failure", stats.Failure,
		"blocked", stats.Blocked,
		"rate_limited", stats.RateLimited,
		"backfill", stats.BackfillUsed,
	)
}

func (r *RawPresenter) Close() error { return nil }

// log escribe: timestamp LEVEL message key=value ...
func (r *RawPresenter) log(level, message string, kv ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := []string{
		r.now().UTC().Format(time.RFC3339),
		fmt.Sprintf("%-5s", level),
		formatValue(message),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%s", kv[i], formatValue(kv[i+1])))
	}
	fmt.Fprintln(r.out, strings.Join(parts, " "))
}

// formatValue entrecomilla strings con espacios
func formatValue(v any) string {
	s := fmt.Sprintf("%v", v)
	if strings.ContainsAny(s, " \t\"=") {
		return strconv.Quote(s)
	}
	return s
}
