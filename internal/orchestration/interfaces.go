package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/progress"
)

// RunResult encapsulates the outcome of a single strategy run.
// It serves as the shared domain type between orchestration and presentation layers.
type RunResult struct {
	// Name is the strategy that produced the result (e.g., "wavefront").
	Name string
	// Result holds the length, string and statistics. It is nil if an error occurred.
	Result *lcs.Result
	// Duration is the wall-clock time of the run, validation included.
	Duration time.Duration
	// Err contains any error that occurred during the run.
	Err error
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	M, N    int
	Verbose bool
	Details bool
	ShowLCS bool
	Matrix  bool
	Pair    lcs.Pair
}

// ProgressReporter defines the interface for displaying fill progress.
// This interface decouples the orchestration layer from the presentation layer:
// implementations handle the visual representation (spinners, progress bars,
// dashboards) while the orchestration layer coordinates the runs.
type ProgressReporter interface {
	// DisplayProgress consumes progress updates until progressChan is
	// closed and then calls wg.Done.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving progress updates from the solvers.
	//   - numRuns: The number of concurrent runs being tracked.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer) {
	f(wg, progressChan, numRuns, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter defines the interface for presenting run results.
type ResultPresenter interface {
	// PresentComparisonTable displays the comparison summary table.
	PresentComparisonTable(results []RunResult, out io.Writer)

	// PresentResult displays the final result.
	PresentResult(result RunResult, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler handles run errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
