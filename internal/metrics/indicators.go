package metrics

import (
	"fmt"
	"time"

	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/lcs"
)

// Indicators summarises a run in domain terms.
type Indicators struct {
	Cells          int64
	CellsPerSecond float64
	// Similarity is 2L/(m+n), 1 for identical sequences.
	Similarity float64
	// Coverage is L/min(m, n), the share of the shorter sequence that
	// takes part in the LCS.
	Coverage   float64
	TableBytes uint64
}

// Compute derives the indicators of a finished run.
func Compute(res *lcs.Result, trace lcs.Trace) *Indicators {
	if res == nil {
		return nil
	}
	ind := &Indicators{
		Cells:      int64(res.M) * int64(res.N),
		TableBytes: lcs.EstimateBytes(res.M, res.N, trace),
	}
	if s := res.Elapsed.Seconds(); s > 0 {
		ind.CellsPerSecond = float64(ind.Cells) / s
	}
	if res.M+res.N > 0 {
		ind.Similarity = 2 * float64(res.Length) / float64(res.M+res.N)
	}
	if short := min(res.M, res.N); short > 0 {
		ind.Coverage = float64(res.Length) / float64(short)
	}
	return ind
}

// ComputeLive estimates throughput from a progress fraction while a run is
// still filling the table.
func ComputeLive(m, n int, progress float64, elapsed time.Duration) *Indicators {
	ind := &Indicators{Cells: int64(float64(m) * float64(n) * progress)}
	if s := elapsed.Seconds(); s > 0 {
		ind.CellsPerSecond = float64(ind.Cells) / s
	}
	return ind
}

// FormatCellsPerSecond renders a throughput with an SI suffix.
func FormatCellsPerSecond(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2f Gcells/s", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2f Mcells/s", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2f Kcells/s", v/1e3)
	default:
		return fmt.Sprintf("%.0f cells/s", v)
	}
}

// FormatRatio renders a ratio in [0, 1] as a percentage.
func FormatRatio(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// String renders the indicators on one line.
func (ind *Indicators) String() string {
	return fmt.Sprintf("cells=%s rate=%s similarity=%s coverage=%s table=%s",
		format.FormatCount(ind.Cells), FormatCellsPerSecond(ind.CellsPerSecond),
		FormatRatio(ind.Similarity), FormatRatio(ind.Coverage), format.FormatBytes(ind.TableBytes))
}
