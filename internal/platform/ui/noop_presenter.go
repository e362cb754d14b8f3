// internal/platform/ui/noop_presenter.go
package ui

import "time"

// NoopPresenter no produce salida. Útil para modo quiet, el servidor HTTP
// y los tests.
type NoopPresenter struct{}

// NewNoopPresenter crea una instancia del presenter sin salida
func NewNoopPresenter() *NoopPresenter {
	return &NoopPresenter{}
}

func (n *NoopPresenter) Start(info SearchInfo)                                            {}
func (n *NoopPresenter) StartStage(stage StageInfo)                                       {}
func (n *NoopPresenter) AddUnits(stageNum int, count int)                                 {}
func (n *NoopPresenter) FinishUnit(stageNum int, label string, s Status, d time.Duration) {}
func (n *NoopPresenter) FinishStage(stageNum int, summary string, d time.Duration)        {}
func (n *NoopPresenter) Info(msg string)                                                  {}
func (n *NoopPresenter) Warning(msg string)                                               {}
func (n *NoopPresenter) Error(msg string)                                                 {}
func (n *NoopPresenter) Finish(stats SearchStats)                                         {}
func (n *NoopPresenter) Close() error                                                     { return nil }
