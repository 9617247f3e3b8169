package lcs

import (
	"context"
	"time"

	"github.com/agbru/lcscalc/internal/progress"
)

// cancelCheckRows is how often, in rows, the sequential fill polls ctx,
// starting before the first row.
const cancelCheckRows = 64

type sequential struct{}

// NewSequential returns the single-goroutine, row-major strategy.
func NewSequential() Solver { return newSolver(sequential{}) }

func (sequential) Name() string { return StrategySequential }

func (s sequential) Fill(ctx context.Context, report progress.ProgressCallback, pair Pair, opts Options) (*fillOutcome, error) {
	m, n := pair.Dims()
	if opts.Trace == TraceNone && !opts.KeepTable {
		return s.fillRolling(ctx, report, pair)
	}

	start := time.Now()
	t := NewTable(m, n, opts.Trace == TraceTags)
	tracker := progress.NewTracker(int64(m), progressSteps, report)
	for i := 1; i <= m; i++ {
		if (i-1)%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		t.fillRow(i, 1, n+1, pair.A[i-1], pair.B)
		tracker.Done(1)
	}
	tracker.Finish()

	return &fillOutcome{
		table:   t,
		length:  t.Final(),
		workers: 1,
		stats:   []WorkerStat{{Worker: 0, Busy: time.Since(start), Cells: int64(m) * int64(n)}},
	}, nil
}

// fillRolling keeps only the previous and current rows. It yields the length
// and nothing to reconstruct from, so it is skipped when the table is kept.
func (sequential) fillRolling(ctx context.Context, report progress.ProgressCallback, pair Pair) (*fillOutcome, error) {
	m, n := pair.Dims()
	start := time.Now()
	prev := make([]uint32, n+1)
	cur := make([]uint32, n+1)
	tracker := progress.NewTracker(int64(m), progressSteps, report)
	for i := 1; i <= m; i++ {
		if (i-1)%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		a := pair.A[i-1]
		for j := 1; j <= n; j++ {
			cur[j], _ = Evaluate(a, pair.B[j-1], prev[j-1], prev[j], cur[j-1])
		}
		prev, cur = cur, prev
		tracker.Done(1)
	}
	tracker.Finish()

	return &fillOutcome{
		length:  int(prev[n]),
		workers: 1,
		stats:   []WorkerStat{{Worker: 0, Busy: time.Since(start), Cells: int64(m) * int64(n)}},
	}, nil
}
