package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/lcscalc/internal/calibration"
	"github.com/agbru/lcscalc/internal/cli"
	"github.com/agbru/lcscalc/internal/config"
	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/format"
	"github.com/agbru/lcscalc/internal/input"
	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/metrics"
	"github.com/agbru/lcscalc/internal/orchestration"
	"github.com/agbru/lcscalc/internal/sysmon"
	"github.com/agbru/lcscalc/internal/tui"
	"github.com/agbru/lcscalc/internal/ui"
)

// loadPair reads the input pair from the literal flags or the record file
// and validates it against the configured alphabet.
func loadPair(cfg config.AppConfig) (lcs.Pair, error) {
	if err := cfg.ValidateInput(); err != nil {
		return lcs.Pair{}, err
	}
	a, b := cfg.A, cfg.B
	if cfg.InputFile != "" {
		rec, err := input.ReadPairFile(cfg.InputFile, cfg.Row)
		if err != nil {
			return lcs.Pair{}, err
		}
		a, b = rec.A, rec.B
	}
	return lcs.NewPair(a, b, lcs.ParseAlphabet(cfg.Alphabet))
}

// prepare loads the pair, applies the size-dependent defaults and builds
// the solver options.
func (a *Application) prepare(ctx context.Context) (lcs.Pair, lcs.Options, error) {
	pair, err := loadPair(a.Config)
	if err != nil {
		return lcs.Pair{}, lcs.Options{}, err
	}
	m, n := pair.Dims()
	if cfg, ok := calibration.LoadCachedCalibration(a.Config, m, n); ok {
		a.logger.Debug().Int("workers", cfg.Workers).Int("processes", cfg.Processes).
			Int("tile_width", cfg.TileWidth).Msg("applied calibration profile")
		a.Config = cfg
	}
	a.Config = config.ApplyAdaptiveDefaults(a.Config, m, n)

	opts, err := a.Config.ToSolverOptions()
	if err != nil {
		return lcs.Pair{}, lcs.Options{}, err
	}
	if opts.MemoryLimit == 0 && opts.Trace != lcs.TraceNone {
		need := lcs.EstimateBytes(m, n, opts.Trace)
		if ok, avail := sysmon.FitsInMemory(ctx, need); !ok {
			a.logger.Warn().
				Str("table", format.FormatBytes(need)).
				Str("available", format.FormatBytes(avail)).
				Msg("table larger than available memory; consider --trace none or --memory-limit")
		}
	}
	return pair, opts, nil
}

// runCompare runs the selected strategies on the input pair and presents
// the outcome. It returns the process exit code.
func (a *Application) runCompare(ctx context.Context) int {
	out := a.Out
	pair, opts, err := a.prepare(ctx)
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	solvers, err := orchestration.GetSolversToRun(a.Config.Strategy, a.Factory)
	if err != nil {
		return apperrors.HandleCalculationError(apperrors.ConfigError{Message: err.Error()}, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	for _, s := range solvers {
		lcs.SetLogger(s, a.logger.With().Str("strategy", s.Name()).Logger())
	}

	if a.Config.TUI {
		return tui.Run(ctx, solvers, pair, opts, a.Config, Version)
	}

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, pair, out)
		cli.PrintExecutionMode(solvers, out)
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	results := orchestration.ExecuteRuns(ctx, solvers, pair, opts, reporter, progressOut)
	mem := collector.Snapshot().Since(before)

	m, n := pair.Dims()
	presOpts := orchestration.PresentationOptions{
		M:       m,
		N:       n,
		Verbose: a.Config.Verbose,
		Details: a.Config.Details,
		ShowLCS: a.Config.ShowLCS,
		Matrix:  a.Config.Matrix,
		Pair:    pair,
	}
	analysisOut := out
	if a.Config.Quiet {
		analysisOut = io.Discard
	}
	code := orchestration.AnalyzeComparisonResults(results, presOpts, cli.CLIResultPresenter{}, cli.CLIResultPresenter{}, analysisOut)

	succeeded := successful(results)
	if a.Config.Quiet {
		if best := fastest(results); best != nil && code == apperrors.ExitSuccess {
			cli.DisplayQuietResult(out, best.Result)
		} else if code != apperrors.ExitSuccess {
			reportQuietFailure(results, code, a.ErrWriter)
		}
	} else if a.Config.Details && len(succeeded) > 0 {
		cli.DisplayMemoryStats(mem.HeapAlloc, mem.TotalAlloc, mem.NumGC, mem.PauseTotalNs, out)
		fmt.Fprintf(out, "Indicators:      %s\n", metrics.Compute(fastest(results).Result, opts.Trace))
	}

	if code == apperrors.ExitSuccess {
		if err := cli.WriteResults(a.Config.OutputFile, succeeded, a.Config.Quiet, out); err != nil {
			fmt.Fprintf(a.ErrWriter, "%sError saving results:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
			return apperrors.ExitErrorGeneric
		}
	}
	return code
}

func successful(results []orchestration.RunResult) []*lcs.Result {
	var out []*lcs.Result
	for _, r := range results {
		if r.Err == nil && r.Result != nil {
			out = append(out, r.Result)
		}
	}
	return out
}

func fastest(results []orchestration.RunResult) *orchestration.RunResult {
	var best *orchestration.RunResult
	for i := range results {
		if results[i].Err == nil && (best == nil || results[i].Duration < best.Duration) {
			best = &results[i]
		}
	}
	return best
}

// reportQuietFailure prints the first error on errWriter, since quiet mode
// suppresses the comparison table.
func reportQuietFailure(results []orchestration.RunResult, code int, errWriter io.Writer) {
	for _, r := range results {
		if r.Err != nil {
			apperrors.HandleCalculationError(r.Err, r.Duration, errWriter, cli.CLIColorProvider{})
			return
		}
	}
	fmt.Fprintf(errWriter, "%sStatus: Mismatch%s between strategies (exit %d)\n", ui.ColorRed(), ui.ColorReset(), code)
}
