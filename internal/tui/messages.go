package tui

import (
	"time"

	"github.com/agbru/lcscalc/internal/metrics"
	"github.com/agbru/lcscalc/internal/orchestration"
)

// ProgressMsg carries one aggregated progress update from a running strategy.
type ProgressMsg struct {
	Index           int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg signals that the progress channel was closed.
type ProgressDoneMsg struct{}

// ComparisonResultsMsg carries the sorted results of every strategy.
type ComparisonResultsMsg struct {
	Results []orchestration.RunResult
}

// FinalResultMsg carries the run chosen for presentation.
type FinalResultMsg struct {
	Result  orchestration.RunResult
	Options orchestration.PresentationOptions
}

// IndicatorsMsg carries indicators computed after a run.
type IndicatorsMsg struct {
	Indicators *metrics.Indicators
}

// ErrorMsg reports a failure of every strategy.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg carries a runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapSys      uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg carries a system-wide CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// RunCompleteMsg is sent when the comparison finished. Generation tells
// runs apart after a reset.
type RunCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the run context ends.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
