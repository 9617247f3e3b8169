package orchestration

import (
	"time"

	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/progress"
)

// ProgressAggregator turns the progress updates of several runs into an
// average and a time estimate. Both the CLI spinner and the TUI consume
// updates through it.
type ProgressAggregator struct {
	state   *format.RunProgress
	numRuns int
}

// NewProgressAggregator creates a new aggregator for the given number
// of runs. Returns nil if numRuns <= 0.
func NewProgressAggregator(numRuns int) *ProgressAggregator {
	if numRuns <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:   format.NewRunProgress(numRuns),
		numRuns: numRuns,
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	// Index is the index of the run that sent the update.
	Index int
	// Value is the raw progress value from the update (0.0 to 1.0).
	Value float64
	// AverageProgress is the aggregated average across all runs.
	AverageProgress float64
	// ETA is the estimated time remaining based on smoothed progress rate.
	ETA time.Duration
}

// Update processes a single progress update and returns the aggregated result.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	avgProgress, eta := a.state.Observe(update.Index, update.Value)
	return AggregatedProgress{
		Index:           update.Index,
		Value:           update.Value,
		AverageProgress: avgProgress,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average progress without updating.
// Useful for periodic refresh between updates (e.g., CLI ticker).
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.Average()
}

// GetETA returns the current ETA estimate without updating.
// Useful for periodic refresh between updates (e.g., CLI ticker).
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.ETA()
}

// NumRuns returns the number of runs being tracked.
func (a *ProgressAggregator) NumRuns() int {
	return a.numRuns
}

// IsMultiRun returns true if tracking more than one run.
func (a *ProgressAggregator) IsMultiRun() bool {
	return a.numRuns > 1
}

// DrainChannel reads all updates from the channel without processing.
// Use this when numRuns <= 0 and updates should be discarded.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
