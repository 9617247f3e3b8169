package lcs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/lcscalc/internal/progress"
)

const tracerName = "github.com/agbru/lcscalc/internal/lcs"

// progressSteps bounds how many progress samples a fill emits.
const progressSteps = 100

// WorkerStat is the time one worker or rank spent computing cells.
type WorkerStat struct {
	Worker int
	Busy   time.Duration
	Cells  int64
}

// Result is a successful fill and reconstruction.
type Result struct {
	Strategy string
	// Workers is the worker or rank count the fill used.
	Workers int
	M, N    int
	Length  int
	// LCS is empty when Options.Trace is TraceNone.
	LCS string
	// Table is nil unless Options.KeepTable was set.
	Table *Table
	// Elapsed covers the fill phase only.
	Elapsed     time.Duration
	WorkerStats []WorkerStat
}

// Solver is the public face of a fill strategy.
type Solver interface {
	Name() string
	// Solve validates the pair, fills a table, and reconstructs the LCS.
	// Progress samples are sent to progressChan tagged with index; the
	// channel may be nil. On failure the Result is nil.
	Solve(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, pair Pair, opts Options) (*Result, error)
}

// filler is implemented by each strategy.
type filler interface {
	Name() string
	Fill(ctx context.Context, report progress.ProgressCallback, pair Pair, opts Options) (*fillOutcome, error)
}

type fillOutcome struct {
	table   *Table
	length  int
	workers int
	stats   []WorkerStat
	// lcs is set by strategies that reconstruct as part of the fill.
	lcs           string
	reconstructed bool
}

// solver wraps a filler with validation, timing, reconstruction, progress
// fan-out, tracing and logging.
type solver struct {
	core   filler
	logger zerolog.Logger
	tracer trace.Tracer
}

// newSolver wraps a strategy implementation.
func newSolver(core filler) Solver {
	return &solver{core: core, logger: zerolog.Nop(), tracer: otel.Tracer(tracerName)}
}

// SetLogger replaces the debug logger of a Solver built by this package.
// Other implementations are left untouched.
func SetLogger(s Solver, logger zerolog.Logger) {
	if impl, ok := s.(*solver); ok {
		impl.logger = logger
	}
}

func (s *solver) Name() string { return s.core.Name() }

func (s *solver) Solve(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, pair Pair, opts Options) (*Result, error) {
	m, n := pair.Dims()
	if err := opts.Alphabet.ValidatePair(pair); err != nil {
		return nil, err
	}
	if err := opts.validate(m, n); err != nil {
		return nil, err
	}
	opts = opts.normalize(n)

	ctx, span := s.tracer.Start(ctx, "lcs.Solve",
		trace.WithAttributes(
			attribute.String("strategy", s.core.Name()),
			attribute.Int("m", m),
			attribute.Int("n", n),
			attribute.String("trace", opts.Trace.String()),
		),
	)
	defer span.End()

	subject := progress.NewProgressSubject()
	if progressChan != nil {
		subject.Register(progress.NewChannelObserver(progressChan))
	}
	report := subject.Freeze(index)

	start := time.Now()
	out, err := s.core.Fill(ctx, report, pair, opts)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fill failed")
		s.logger.Debug().Err(err).Str("strategy", s.core.Name()).Dur("elapsed", elapsed).Msg("fill failed")
		return nil, err
	}

	res := &Result{
		Strategy:    s.core.Name(),
		Workers:     out.workers,
		M:           m,
		N:           n,
		Length:      out.length,
		Elapsed:     elapsed,
		WorkerStats: out.stats,
	}
	switch {
	case out.reconstructed:
		res.LCS = out.lcs
	case opts.Trace != TraceNone:
		lcs, err := Reconstruct(out.table, pair)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reconstruction failed")
			return nil, err
		}
		res.LCS = lcs
	}
	if opts.KeepTable {
		res.Table = out.table
	}

	span.SetAttributes(attribute.Int("length", res.Length), attribute.Int("workers", res.Workers))
	span.SetStatus(codes.Ok, "")
	s.logger.Debug().
		Str("strategy", res.Strategy).
		Int("workers", res.Workers).
		Int("m", m).
		Int("n", n).
		Int("length", res.Length).
		Dur("elapsed", elapsed).
		Msg("fill complete")
	return res, nil
}
