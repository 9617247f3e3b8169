package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/progress"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of blocking solver
// goroutines when the UI is slow to consume updates.
const ProgressBufferMultiplier = 5

// ExecuteRuns runs every solver on the same pair concurrently.
//
// It manages the lifecycle of the run goroutines, collects their results,
// and coordinates the display of progress updates. A failing run does not
// cancel the others; its error is recorded in its RunResult.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - solvers: The strategies to execute.
//   - pair: The sequences to compare.
//   - opts: Solver options shared by every run.
//   - progressReporter: The progress reporter (use NullProgressReporter for quiet mode).
//   - out: The io.Writer for displaying progress updates.
//
// Returns:
//   - []RunResult: One result per solver, in the order given.
func ExecuteRuns(ctx context.Context, solvers []lcs.Solver, pair lcs.Pair, opts lcs.Options, progressReporter ProgressReporter, out io.Writer) []RunResult {
	var g errgroup.Group
	results := make([]RunResult, len(solvers))
	progressChan := make(chan progress.ProgressUpdate, len(solvers)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(solvers), out)

	for i, s := range solvers {
		g.Go(func() error {
			startTime := time.Now()
			res, err := s.Solve(ctx, progressChan, i, pair, opts)
			results[i] = RunResult{
				Name: s.Name(), Result: res, Duration: time.Since(startTime), Err: err,
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults sorts the results by duration, prints the
// comparison table and checks that every successful run found the same
// length and the same subsequence.
//
// Parameters:
//   - results: The run results to analyze.
//   - opts: Presentation options for the final result.
//   - presenter: The result presenter.
//   - errHandler: Maps the first error to an exit code when every run failed.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []RunResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var firstValid *RunResult
	var firstError error
	successCount := 0
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
			continue
		}
		successCount++
		if firstValid == nil {
			firstValid = &results[i]
		}
	}

	presenter.PresentComparisonTable(results, out)

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No strategy could complete the run.\n")
		return errHandler.HandleError(firstError, 0, out)
	}

	if mismatch := findMismatch(results, firstValid); mismatch != nil {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s disagrees with %s (length %d vs %d).\n",
			mismatch.Name, firstValid.Name, mismatch.Result.Length, firstValid.Result.Length)
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	presenter.PresentResult(*firstValid, opts, out)
	return apperrors.ExitSuccess
}

// findMismatch returns the first successful result whose length or string
// differs from ref.
func findMismatch(results []RunResult, ref *RunResult) *RunResult {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if r.Result.Length != ref.Result.Length || r.Result.LCS != ref.Result.LCS {
			return r
		}
	}
	return nil
}

// GetSolversToRun resolves a strategy selection against the factory. The
// name "all" selects every registered strategy in sorted order.
//
// Parameters:
//   - name: A strategy name or "all".
//   - factory: The solver factory to retrieve implementations from.
//
// Returns:
//   - []lcs.Solver: The solvers to execute.
//   - error: The lookup error for an unknown name.
func GetSolversToRun(name string, factory lcs.SolverFactory) ([]lcs.Solver, error) {
	if name == "all" {
		keys := factory.List()
		solvers := make([]lcs.Solver, 0, len(keys))
		for _, k := range keys {
			s, err := factory.Get(k)
			if err != nil {
				return nil, err
			}
			solvers = append(solvers, s)
		}
		return solvers, nil
	}
	s, err := factory.Get(name)
	if err != nil {
		return nil, err
	}
	return []lcs.Solver{s}, nil
}
