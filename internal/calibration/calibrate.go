// Package calibration benchmarks the parallel strategies on the current
// machine and caches the fastest settings in a profile that later runs
// apply in place of the adaptive estimates.
package calibration

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/lcscalc/internal/input"
	"github.com/agbru/lcscalc/internal/lcs"
)

// Options tunes a calibration run.
type Options struct {
	// Size is the length of both benchmark sequences.
	Size int
	// Quick benchmarks the reduced candidate sets.
	Quick bool
	// Repeats is how many times each candidate runs; the best time counts.
	Repeats int
	// Seed makes the benchmark pair reproducible.
	Seed   uint64
	Logger zerolog.Logger
}

// DefaultOptions returns the settings of `lcscalc calibrate`.
func DefaultOptions() Options {
	return Options{Size: 3000, Repeats: 2, Seed: 1, Logger: zerolog.Nop()}
}

// calibrationResult is one benchmarked candidate.
type calibrationResult struct {
	Label    string
	Value    int
	Duration time.Duration
	Err      error
}

// RunCalibration benchmarks worker counts for the wavefront strategy, then
// rank counts and tile widths for the distributed strategy, prints a summary
// per phase on out and returns the resulting profile.
func RunCalibration(ctx context.Context, factory lcs.SolverFactory, opts Options, out io.Writer) (*CalibrationProfile, error) {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Repeats <= 0 {
		opts.Repeats = 1
	}
	wavefront, err := factory.Get(lcs.StrategyWavefront)
	if err != nil {
		return nil, err
	}
	distributed, err := factory.Get(lcs.StrategyDistributed)
	if err != nil {
		return nil, err
	}

	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed+1))
	symbols := lcs.DNA.Symbols()
	pair := lcs.Pair{
		A: lcs.Sequence(input.RandomSequence(r, symbols, opts.Size)),
		B: lcs.Sequence(input.RandomSequence(r, symbols, opts.Size)),
	}
	start := time.Now()
	base := lcs.Options{Alphabet: lcs.DNA, Trace: lcs.TraceNone}

	workers := GenerateWorkerCounts()
	if opts.Quick {
		workers = GenerateQuickWorkerCounts()
	}
	results, bestWorkers, err := benchmark(ctx, wavefront, pair, opts, "workers", workers, func(w int) lcs.Options {
		o := base
		o.Workers = w
		return o
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\nWavefront (%d x %d)", opts.Size, opts.Size)
	printCalibrationResults(out, results, bestWorkers)

	const sampleTiles = 4
	results, bestProcesses, err := benchmark(ctx, distributed, pair, opts, "ranks", GenerateQuickWorkerCounts(), func(p int) lcs.Options {
		o := base
		o.Processes = p
		o.TileWidth = TileWidthFor(opts.Size, p, sampleTiles)
		return o
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\nDistributed ranks (%d tiles per rank)", sampleTiles)
	printCalibrationResults(out, results, bestProcesses)

	results, bestTiles, err := benchmark(ctx, distributed, pair, opts, "tiles/rank", GenerateTilesPerRank(opts.Quick), func(t int) lcs.Options {
		o := base
		o.Processes = bestProcesses
		o.TileWidth = TileWidthFor(opts.Size, bestProcesses, t)
		return o
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\nDistributed tiles (%d ranks)", bestProcesses)
	printCalibrationResults(out, results, bestTiles)

	p := NewProfile()
	p.OptimalWorkers = bestWorkers
	p.OptimalProcesses = bestProcesses
	p.OptimalTilesPerRank = bestTiles
	p.CalibrationSize = opts.Size
	p.CalibrationTime = time.Since(start).Round(time.Millisecond).String()
	printCalibrationOutput(out, p)
	return p, nil
}

// benchmark runs solver once per candidate and returns the measurements and
// the fastest candidate. It fails only when every candidate failed or ctx
// ended.
func benchmark(ctx context.Context, solver lcs.Solver, pair lcs.Pair, opts Options, label string, candidates []int, build func(int) lcs.Options) ([]calibrationResult, int, error) {
	results := make([]calibrationResult, 0, len(candidates))
	best, bestTime := 0, time.Duration(0)
	for _, c := range candidates {
		res := calibrationResult{Label: label, Value: c}
		for range opts.Repeats {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
			out, err := solver.Solve(ctx, nil, 0, pair, build(c))
			if err != nil {
				res.Err = err
				break
			}
			if res.Duration == 0 || out.Elapsed < res.Duration {
				res.Duration = out.Elapsed
			}
		}
		opts.Logger.Debug().Str("strategy", solver.Name()).Str(label, fmt.Sprint(c)).
			Dur("best", res.Duration).Err(res.Err).Msg("calibration trial")
		if res.Err == nil && (best == 0 || res.Duration < bestTime) {
			best, bestTime = c, res.Duration
		}
		results = append(results, res)
	}
	if best == 0 {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("calibration: every %s candidate failed: %w", label, results[0].Err)
	}
	return results, best, nil
}
