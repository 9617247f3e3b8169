package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/ui"
)

// printCalibrationResults formats and prints one phase's results table.
func printCalibrationResults(out io.Writer, results []calibrationResult, best int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	if len(results) == 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %s%-12s%s │ %sExecution Time%s\n", ui.ColorUnderline(), results[0].Label, ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 25))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		if res.Err == nil {
			durationStr = format.FormatExecutionDuration(res.Duration)
		}
		highlight := ""
		if res.Value == best && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-12d%s │ %s%s%s%s\n", ui.ColorCyan(), res.Value, ui.ColorReset(), ui.ColorYellow(), durationStr, ui.ColorReset(), highlight)
	}
	tw.Flush()
}

// printCalibrationOutput prints the settings a profile will apply.
func printCalibrationOutput(out io.Writer, p *CalibrationProfile) {
	fmt.Fprintf(out, "\n%sCalibration%s: workers=%s%d%s, ranks=%s%d%s, tiles/rank=%s%d%s (%s)\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), p.OptimalWorkers, ui.ColorReset(),
		ui.ColorYellow(), p.OptimalProcesses, ui.ColorReset(),
		ui.ColorYellow(), p.OptimalTilesPerRank, ui.ColorReset(),
		p.CalibrationTime)
}
