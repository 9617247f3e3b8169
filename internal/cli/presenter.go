package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/orchestration"
	"github.com/agbru/lcscalc/internal/progress"
	"github.com/agbru/lcscalc/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for ongoing runs.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numRuns int, out io.Writer) {
	DisplayProgress(wg, progressChan, numRuns, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for the
// terminal: a comparison table followed by the result block.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// CLIColorProvider adapts the ui theme to apperrors.ColorProvider.
type CLIColorProvider struct{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorOrange() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// PresentComparisonTable displays strategy, worker count, duration, speedup
// over the sequential run (when one is present) and status. Uses manual
// padding to correctly handle ANSI color codes.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.RunResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	baseline := sequentialBaseline(results)
	type row struct{ name, workers, duration, speedup, status string }
	rows := make([]row, len(results))
	widths := [4]int{len("Strategy"), len("Workers"), len("Duration"), len("Speedup")}
	for i, res := range results {
		r := row{name: res.Name, workers: "-", duration: displayDuration(res.Duration), speedup: "-"}
		if res.Err != nil {
			r.status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		} else {
			r.workers = fmt.Sprint(res.Result.Workers)
			r.status = fmt.Sprintf("%s✅ Success%s (length %d)", ui.ColorGreen(), ui.ColorReset(), res.Result.Length)
			if baseline > 0 {
				r.speedup = fmt.Sprintf("%.2fx", Speedup(baseline, res.Result.Elapsed))
			}
		}
		rows[i] = r
		for k, s := range []string{r.name, r.workers, r.duration, r.speedup} {
			widths[k] = max(widths[k], len([]rune(s)))
		}
	}

	header := []string{"Strategy", "Workers", "Duration", "Speedup"}
	for k, h := range header {
		fmt.Fprintf(out, "%s%s%s%s   ", ui.ColorUnderline(), h, ui.ColorReset(), padRight("", widths[k]-len(h)))
	}
	fmt.Fprintf(out, "%sStatus%s\n", ui.ColorUnderline(), ui.ColorReset())

	for _, r := range rows {
		fmt.Fprintf(out, "%s%s%s%s   %s%s   %s%s%s%s   %s%s   %s\n",
			ui.ColorBlue(), r.name, ui.ColorReset(), padRight("", widths[0]-len([]rune(r.name))),
			r.workers, padRight("", widths[1]-len(r.workers)),
			ui.ColorYellow(), r.duration, ui.ColorReset(), padRight("", widths[2]-len([]rune(r.duration))),
			r.speedup, padRight("", widths[3]-len(r.speedup)),
			r.status)
	}
}

// sequentialBaseline returns the fill time of a successful sequential run, or 0.
func sequentialBaseline(results []orchestration.RunResult) time.Duration {
	for _, res := range results {
		if res.Err == nil && res.Name == lcs.StrategySequential {
			return res.Result.Elapsed
		}
	}
	return 0
}

func displayDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult displays the final result.
func (CLIResultPresenter) PresentResult(result orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, opts, out)
}

// FormatDuration formats a duration for display.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError prints a failed run and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// DisplayMemoryStats shows memory statistics after a run.
func DisplayMemoryStats(heapAlloc, totalAlloc uint64, numGC uint32, pauseTotalNs uint64, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Peak heap:       %s\n", format.FormatBytes(heapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(totalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", numGC)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(pauseTotalNs)/1e6)
}
