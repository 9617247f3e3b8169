package lcs

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"

	"github.com/agbru/lcscalc/internal/parallel"
	"github.com/agbru/lcscalc/internal/progress"
)

// workerSlot is padded so that workers updating their own counters do not
// share cache lines.
type workerSlot struct {
	busy  time.Duration
	cells int64
	_     cpu.CacheLinePad
}

type wavefront struct {
	// afterBlock, when set, runs after each worker finishes its block of
	// diagonal d and before it reaches the barrier.
	afterBlock func(worker, d int) error
}

// NewWavefront returns the shared-memory anti-diagonal strategy.
func NewWavefront() Solver { return newSolver(&wavefront{}) }

func (*wavefront) Name() string { return StrategyWavefront }

// blockRange splits a diagonal of length cells into contiguous blocks, one
// per worker. The first cells%workers workers take one extra cell.
func blockRange(cells, workers, worker int) (lo, hi int) {
	base, extra := cells/workers, cells%workers
	if worker < extra {
		lo = worker * (base + 1)
		return lo, lo + base + 1
	}
	lo = extra*(base+1) + (worker-extra)*base
	return lo, lo + base
}

func (w *wavefront) Fill(ctx context.Context, report progress.ProgressCallback, pair Pair, opts Options) (*fillOutcome, error) {
	m, n := pair.Dims()
	workers := opts.Workers
	t := NewTable(m, n, opts.Trace == TraceTags)
	if m == 0 || n == 0 {
		return &fillOutcome{table: t, workers: workers, stats: make([]WorkerStat, workers)}, nil
	}

	// Interior diagonals run from d=2 (cell 1,1) to d=m+n (cell m,n).
	first, last := 2, m+n
	tracker := progress.NewTracker(int64(last-first+1), progressSteps, report)
	// The trip action runs once per diagonal while every worker is parked,
	// which makes it the only point where the fill may stop.
	barrier := parallel.NewBarrier(workers, func(int) error {
		tracker.Done(1)
		return ctx.Err()
	})

	slots := make([]workerSlot, workers)
	var g errgroup.Group
	for k := 0; k < workers; k++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: worker %d: %v", ErrWorkerPanic, k, r)
				}
				if err != nil {
					barrier.Abort(err)
				}
			}()
			return w.sweep(t, pair, k, workers, first, last, barrier, &slots[k])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tracker.Finish()

	stats := make([]WorkerStat, workers)
	for k := range slots {
		stats[k] = WorkerStat{Worker: k, Busy: slots[k].busy, Cells: slots[k].cells}
	}
	return &fillOutcome{table: t, length: t.Final(), workers: workers, stats: stats}, nil
}

// sweep runs one worker over every diagonal, computing its block of each.
func (w *wavefront) sweep(t *Table, pair Pair, k, workers, first, last int, barrier *parallel.Barrier, slot *workerSlot) error {
	m, n := pair.Dims()
	for d := first; d <= last; d++ {
		iLo, iHi := max(1, d-n), min(m, d-1)
		lo, hi := blockRange(iHi-iLo+1, workers, k)

		start := time.Now()
		for i := iLo + lo; i < iLo+hi; i++ {
			j := d - i
			t.evaluate(i, j, pair.A[i-1], pair.B[j-1])
		}
		slot.busy += time.Since(start)
		slot.cells += int64(hi - lo)

		if w.afterBlock != nil {
			if err := w.afterBlock(k, d); err != nil {
				return err
			}
		}
		if err := barrier.Await(); err != nil {
			return err
		}
	}
	return nil
}
