package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/lcscalc/internal/config"
	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/orchestration"
	"github.com/agbru/lcscalc/internal/ui"
)

// PrintExecutionConfig displays the problem size and the run settings.
func PrintExecutionConfig(cfg config.AppConfig, pair lcs.Pair, out io.Writer) {
	m, n := pair.Dims()
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Comparing %s%d%s x %s%d%s symbols (%s cells) with a timeout of %s%s%s.\n",
		ui.ColorCyan(), m, ui.ColorReset(), ui.ColorCyan(), n, ui.ColorReset(),
		format.FormatCount(int64(m)*int64(n)), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "Parallelism: workers=%s%d%s, processes=%s%d%s, tile width=%s%d%s, trace=%s.\n",
		ui.ColorCyan(), cfg.Workers, ui.ColorReset(), ui.ColorCyan(), cfg.Processes, ui.ColorReset(),
		ui.ColorCyan(), cfg.TileWidth, ui.ColorReset(), cfg.Trace)
}

// PrintExecutionMode displays whether one strategy runs or several are compared.
func PrintExecutionMode(solvers []lcs.Solver, out io.Writer) {
	var modeDesc string
	if len(solvers) > 1 {
		modeDesc = "Parallel comparison of all strategies"
	} else {
		modeDesc = fmt.Sprintf("Single run with the %s%s%s strategy",
			ui.ColorGreen(), solvers[0].Name(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// DisplayResult prints the length, the subsequence and, with Details, the
// per-worker statistics of a successful run.
func DisplayResult(res orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	r := res.Result
	fmt.Fprintf(out, "\n--- Result ---\n")
	fmt.Fprintf(out, "Strategy:   %s%s%s (%d workers)\n", ui.ColorBlue(), r.Strategy, ui.ColorReset(), r.Workers)
	fmt.Fprintf(out, "Fill time:  %s%s%s\n", ui.ColorYellow(), format.FormatExecutionDuration(r.Elapsed), ui.ColorReset())
	fmt.Fprintf(out, "Throughput: %s\n", format.FormatCellRate(int64(r.M)*int64(r.N), r.Elapsed.Seconds()))
	fmt.Fprintf(out, "LCS length: %s%s%d%s\n", ui.ColorBold(), ui.ColorGreen(), r.Length, ui.ColorReset())

	if opts.ShowLCS && r.Length > 0 {
		if r.LCS == "" {
			fmt.Fprintf(out, "LCS:        (not reconstructed, trace=none)\n")
		} else {
			fmt.Fprintf(out, "LCS:        %s%s%s\n", ui.ColorCyan(), truncateLCS(r.LCS, opts.Verbose), ui.ColorReset())
			if !opts.Verbose && len(r.LCS) > TruncationLimit {
				fmt.Fprintf(out, "            (truncated) Tip: use --verbose to print all %d symbols.\n", len(r.LCS))
			}
		}
	}

	if opts.Details {
		displayWorkerStats(r, out)
	}
	if opts.Matrix && r.Table != nil {
		fmt.Fprintf(out, "\n--- Table ---\n")
		if err := lcs.PrintMatrix(out, r.Table, opts.Pair, r.Table.HasTags()); err != nil {
			fmt.Fprintf(out, "%s(table not printed: %v)%s\n", ui.ColorOrange(), err, ui.ColorReset())
		}
	}
}

func displayWorkerStats(r *lcs.Result, out io.Writer) {
	if len(r.WorkerStats) == 0 {
		return
	}
	fmt.Fprintf(out, "\n--- Detailed worker statistics ---\n")
	for _, s := range r.WorkerStats {
		share := 0.0
		if r.Elapsed > 0 {
			share = 100 * s.Busy.Seconds() / r.Elapsed.Seconds()
		}
		fmt.Fprintf(out, "  worker %-3d busy %-10s (%5.1f%%)  cells %s\n",
			s.Worker, format.FormatExecutionDuration(s.Busy), share, format.FormatCount(s.Cells))
	}
}

// truncateLCS keeps the first and last DisplayEdges symbols of long strings.
func truncateLCS(s string, verbose bool) string {
	if verbose || len(s) <= TruncationLimit {
		return s
	}
	return s[:DisplayEdges] + "..." + s[len(s)-DisplayEdges:]
}

// FormatQuietResult formats a result for quiet mode: the length, then the
// subsequence, separated by a space. Suitable for scripting.
func FormatQuietResult(r *lcs.Result) string {
	return strings.TrimSpace(fmt.Sprintf("%d %s", r.Length, r.LCS))
}

// DisplayQuietResult outputs a result in quiet mode.
func DisplayQuietResult(out io.Writer, r *lcs.Result) {
	fmt.Fprintln(out, FormatQuietResult(r))
}
