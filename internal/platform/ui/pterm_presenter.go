// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// PTermPresenter renderiza la búsqueda con pterm: header, un spinner por
// stage que cuenta unidades terminadas y un panel final de estadísticas.
type PTermPresenter struct {
	mu sync.Mutex

	info     SearchInfo
	spinner  *pterm.SpinnerPrinter
	stage    StageInfo
	finished int
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{}
}

// Start muestra el header de la búsqueda
func (p *PTermPresenter) Start(info SearchInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info = info

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("pricescout - Price Comparison")
	pterm.Println()

	body := fmt.Sprintf("%s Query: %s\n", IconSearch, pterm.Cyan(info.Query))
	body += fmt.Sprintf("   Country: %s\n", pterm.Yellow(info.Country))
	body += fmt.Sprintf("   Strategy: %s\n", info.Strategy)
	body += fmt.Sprintf("   Request: %s", pterm.Gray(info.RequestID))

	pterm.DefaultBox.
		WithTitle("Search").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Println(body)
	pterm.Println()
}

// StartStage abre la sección del stage y arranca su spinner
func (p *PTermPresenter) StartStage(stage StageInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	p.stage = stage
	p.finished = 0

	pterm.DefaultSection.WithLevel(2).Println(fmt.Sprintf("%s Stage %d/%d: %s",
		IconStage, stage.Number, stage.TotalStages, pterm.Cyan(stage.Name)))

	p.spinner, _ = pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷").
		WithRemoveWhenDone(true).
		Start(p.progressText())
}

// AddUnits suma unidades al stage en curso y refresca el contador
func (p *PTermPresenter) AddUnits(stageNum int, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stageNum != p.stage.Number || n <= 0 {
		return
	}
	p.stage.Units += n
	if p.spinner != nil {
		p.spinner.UpdateText(p.progressText())
	}
}

// FinishUnit imprime una línea por unidad terminada y actualiza el spinner
func (p *PTermPresenter) FinishUnit(stageNum int, label string, status Status, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stageNum != p.stage.Number {
		return
	}
	p.finished++

	line := fmt.Sprintf("  %s %s", status.Symbol(), truncate(label, 70))
	if duration > 0 {
		line += fmt.Sprintf(" (%s)", formatDuration(duration))
	}
	if p.spinner != nil {
		p.spinner.UpdateText(p.progressText())
	}
	status.Style().Println(line)
}

// FinishStage detiene el spinner e imprime el resumen
func (p *PTermPresenter) FinishStage(stageNum int, summary string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	pterm.Info.Printf("Stage %d completed in %s: %s\n", stageNum, formatDuration(duration), summary)
	pterm.Println(pterm.Gray(SeparatorLight))
}

func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pterm.Info.Println(msg)
}

func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pterm.Warning.Println(msg)
}

func (p *PTermPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pterm.Error.Println(msg)
}

// Finish muestra el panel de estadísticas
func (p *PTermPresenter) Finish(stats SearchStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	pterm.Println()
	pterm.Println(pterm.LightBlue(SeparatorHeavy))

	body := fmt.Sprintf("%s Duration: %s\n", IconTime, pterm.Green(formatDuration(stats.TotalDuration)))
	body += fmt.Sprintf("%s Offers: %s\n", IconOffers, pterm.Cyan(fmt.Sprintf("%d", stats.Results)))
	body += fmt.Sprintf("%s Sites checked: %d, URLs found: %d\n", IconSites, stats.SitesChecked, stats.URLs)
	body += fmt.Sprintf("%s Extractions ok: %s, failed: %s",
		IconSuccess,
		pterm.Green(fmt.Sprintf("%d", stats.Success)),
		pterm.Red(fmt.Sprintf("%d", stats.Failure)),
	)
	if stats.Blocked > 0 {
		body += fmt.Sprintf("\n%s Blocked by bot checks: %s", IconBlocked, pterm.Yellow(fmt.Sprintf("%d", stats.Blocked)))
	}
	if stats.RateLimited > 0 {
		body += fmt.Sprintf("\n   Rate limited: %d", stats.RateLimited)
	}
	if stats.BackfillUsed {
		body += "\n   Backfill batch: used"
	}

	style := pterm.NewStyle(pterm.FgGreen)
	if stats.Results == 0 {
		style = pterm.NewStyle(pterm.FgYellow)
	}
	pterm.DefaultBox.
		WithTitle("Search Statistics").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(style).
		Println(body)
	pterm.Println()
}

// Close detiene el spinner activo
func (p *PTermPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSpinner()
	return nil
}

// stopSpinner must be called with p.mu held.
func (p *PTermPresenter) stopSpinner() {
	if p.spinner != nil {
		_ = p.spinner.Stop()
		p.spinner = nil
	}
}

func (p *PTermPresenter) progressText() string {
	if p.stage.Units <= 0 {
		return fmt.Sprintf("%s...", p.stage.Name)
	}
	return fmt.Sprintf("%s... %d/%d", p.stage.Name, p.finished, p.stage.Units)
}
