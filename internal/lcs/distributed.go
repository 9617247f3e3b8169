package lcs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/lcscalc/internal/progress"
	"github.com/agbru/lcscalc/internal/transport"
)

// maxMeshBuffer caps the segments buffered per in-process link.
const maxMeshBuffer = 1024

// band is one rank's slice of the table: padded rows lo+1..hi plus a ghost
// row 0 holding row lo, which belongs to the previous rank (or is the
// all-zero border for rank 0).
type band struct {
	lo, hi int
	cols   int
	lens   []uint32
	tags   []Tag
}

func newBand(lo, hi, n int, withTags bool) *band {
	b := &band{lo: lo, hi: hi, cols: n + 1}
	b.lens = make([]uint32, (hi-lo+1)*b.cols)
	if withTags {
		b.tags = make([]Tag, len(b.lens))
	}
	return b
}

func (b *band) height() int { return b.hi - b.lo }

// at returns the length of padded cell (i, j), lo <= i <= hi.
func (b *band) at(i, j int) uint32 { return b.lens[(i-b.lo)*b.cols+j] }

func (b *band) row(i int) []uint32 {
	r := i - b.lo
	return b.lens[r*b.cols : (r+1)*b.cols]
}

// fillTile evaluates columns [c0, c1) of every owned row.
func (b *band) fillTile(pair Pair, c0, c1 int) {
	for r := 1; r <= b.height(); r++ {
		a := pair.A[b.lo+r-1]
		base := r * b.cols
		for j := c0; j < c1; j++ {
			k := base + j
			l, tag := Evaluate(a, pair.B[j-1], b.lens[k-b.cols-1], b.lens[k-b.cols], b.lens[k-1])
			b.lens[k] = l
			if b.tags != nil {
				b.tags[k] = tag
			}
		}
	}
}

// bandBounds returns the padded row range (lo, hi] owned by rank k of p.
func bandBounds(m, p, k int) (lo, hi int) {
	return k * m / p, (k + 1) * m / p
}

// RankResult is what one rank knows after a distributed run.
type RankResult struct {
	Rank, Size int
	// FirstRow and LastRow bound the padded rows this rank owned. The band is
	// empty when FirstRow > LastRow.
	FirstRow, LastRow int
	// Length is the LCS length of the whole pair.
	Length int
	// LCS is the full string at rank 0 and a suffix of it elsewhere.
	LCS  string
	Stat WorkerStat
	band *band
}

// RunRank runs one rank of a distributed fill over ep. Every rank must be
// given the same pair and options. The rank fills its band, exchanges
// boundary segments with its neighbours, then takes part in the backtrace
// handoff towards rank 0.
func RunRank(ctx context.Context, ep transport.Endpoint, pair Pair, opts Options, report progress.ProgressCallback) (*RankResult, error) {
	m, n := pair.Dims()
	if err := opts.Alphabet.ValidatePair(pair); err != nil {
		return nil, err
	}
	if err := opts.validate(m, n); err != nil {
		return nil, err
	}
	opts = opts.normalize(n)
	lo, hi := bandBounds(m, ep.Size(), ep.Rank())
	tracker := progress.NewTracker(int64(hi-lo)*int64(n), progressSteps, report)
	res, err := runRank(ctx, ep, pair, opts, tracker)
	if err == nil {
		tracker.Finish()
	}
	return res, err
}

func runRank(ctx context.Context, ep transport.Endpoint, pair Pair, opts Options, tracker *progress.Tracker) (*RankResult, error) {
	m, n := pair.Dims()
	k, size := ep.Rank(), ep.Size()
	lo, hi := bandBounds(m, size, k)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "lcs.RunRank",
		trace.WithAttributes(attribute.Int("rank", k), attribute.Int("first_row", lo+1), attribute.Int("last_row", hi)))
	defer span.End()

	b := newBand(lo, hi, n, opts.Trace == TraceTags)
	res := &RankResult{Rank: k, Size: size, FirstRow: lo + 1, LastRow: hi, band: b}

	start := time.Now()
	if err := fillBand(ctx, ep, pair, opts.TileWidth, b, tracker); err != nil {
		span.RecordError(err)
		return nil, err
	}
	res.Stat = WorkerStat{Worker: k, Busy: time.Since(start), Cells: int64(b.height()) * int64(n)}

	if err := handoffTrace(ctx, ep, pair, opts.Trace, b, res); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

// fillBand computes the band tile by tile. Before each tile it checks ctx and
// waits for the matching segment of row lo from the previous rank; after each
// tile it forwards the tile's segment of row hi to the next rank.
func fillBand(ctx context.Context, ep transport.Endpoint, pair Pair, tile int, b *band, tracker *progress.Tracker) error {
	n := len(pair.B)
	k, size := ep.Rank(), ep.Size()
	ghost := b.row(b.lo)
	have := 1 // ghost columns [0, have) are final; column 0 is the border

	for c0 := 1; c0 <= n; c0 += tile {
		if err := ctx.Err(); err != nil {
			return err
		}
		c1 := min(c0+tile, n+1)

		if k > 0 {
			for have < c1 {
				seg, err := ep.RecvRow(ctx)
				if err != nil {
					return &PartitionUnavailableError{Rank: k - 1, Row: b.lo, Cause: err}
				}
				if int(seg.Row) != b.lo || int(seg.Start) != have || have+len(seg.Values) > n+1 {
					return &PartitionUnavailableError{Rank: k - 1, Row: b.lo,
						Cause: fmt.Errorf("out-of-order segment row=%d start=%d len=%d, want row=%d start=%d", seg.Row, seg.Start, len(seg.Values), b.lo, have)}
				}
				copy(ghost[have:], seg.Values)
				have += len(seg.Values)
			}
		}

		b.fillTile(pair, c0, c1)
		tracker.Done(int64(b.height()) * int64(c1-c0))

		if k < size-1 {
			// The segment is final and never written again, so the
			// receiver may read it without a copy.
			seg := transport.Segment{Row: uint32(b.hi), Start: uint32(c0), Values: b.row(b.hi)[c0:c1]}
			if err := ep.SendRow(ctx, seg); err != nil {
				return &PartitionUnavailableError{Rank: k + 1, Row: b.hi, Cause: err}
			}
		}
	}
	return nil
}

// handoffTrace continues the backtrace received from rank k+1 (or starts it
// at cell (m, n) on the last rank) through this band and passes it on to
// rank k-1.
func handoffTrace(ctx context.Context, ep transport.Endpoint, pair Pair, mode Trace, b *band, res *RankResult) error {
	m, n := pair.Dims()
	k, size := ep.Rank(), ep.Size()

	var tr transport.Trace
	if k == size-1 {
		tr = transport.Trace{Column: uint32(n), Length: b.at(m, n)}
	} else {
		var err error
		if tr, err = ep.RecvTrace(ctx); err != nil {
			return &PartitionUnavailableError{Rank: k + 1, Row: b.hi, Cause: err}
		}
	}

	if mode != TraceNone && tr.Column > 0 {
		j, local := b.walk(pair, int(tr.Column))
		tr.Column = uint32(j)
		tr.Suffix = append(local, tr.Suffix...)
	}
	res.Length = int(tr.Length)
	res.LCS = string(tr.Suffix)

	if k > 0 {
		if err := ep.SendTrace(ctx, tr); err != nil {
			return &PartitionUnavailableError{Rank: k - 1, Row: b.lo, Cause: err}
		}
	}
	return nil
}

// walk backtracks from (hi, j) until it leaves the band through row lo or
// reaches column 0. It returns the exit column and the symbols matched on
// the way, in order.
func (b *band) walk(pair Pair, j int) (int, []byte) {
	var rev []byte
	i := b.hi
	for i > b.lo && j > 0 {
		var tag Tag
		if b.tags != nil {
			tag = b.tags[(i-b.lo)*b.cols+j]
		} else {
			tag = deriveTag(pair.A[i-1], pair.B[j-1], b.at(i-1, j), b.at(i, j-1))
		}
		switch tag {
		case Diagonal:
			rev = append(rev, pair.A[i-1])
			i, j = i-1, j-1
		case FromTop:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}
	return j, rev
}

type distributed struct{}

// NewDistributed returns the row-band strategy. Ranks run as goroutines
// linked by Options.Mesh and share nothing but transport messages.
func NewDistributed() Solver { return newSolver(distributed{}) }

func (distributed) Name() string { return StrategyDistributed }

func (distributed) Fill(ctx context.Context, report progress.ProgressCallback, pair Pair, opts Options) (*fillOutcome, error) {
	m, n := pair.Dims()
	size := opts.Processes
	tiles := (n + opts.TileWidth - 1) / opts.TileWidth
	eps := opts.Mesh(size, min(max(tiles, 1), maxMeshBuffer))
	tracker := progress.NewTracker(int64(m)*int64(n), progressSteps, report)

	results := make([]*RankResult, size)
	g, gctx := errgroup.WithContext(ctx)
	for k, ep := range eps {
		g.Go(func() (err error) {
			defer ep.Close()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: rank %d: %v", ErrWorkerPanic, k, r)
				}
				var pu *PartitionUnavailableError
				if err != nil && !errors.As(err, &pu) {
					err = &PartitionUnavailableError{Rank: k, Row: -1, Cause: err}
				}
			}()
			results[k], err = runRank(gctx, ep, pair, opts, tracker)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	tracker.Finish()

	out := &fillOutcome{
		length:        results[0].Length,
		lcs:           results[0].LCS,
		reconstructed: opts.Trace != TraceNone,
		workers:       size,
		stats:         make([]WorkerStat, size),
	}
	for k, r := range results {
		out.stats[k] = r.Stat
	}
	if opts.KeepTable {
		out.table = gather(results, m, n, opts.Trace == TraceTags)
	}
	return out, nil
}

// gather assembles the full table from every rank's band.
func gather(results []*RankResult, m, n int, withTags bool) *Table {
	t := NewTable(m, n, withTags)
	for _, r := range results {
		b := r.band
		for i := b.lo + 1; i <= b.hi; i++ {
			src := (i - b.lo) * b.cols
			dst := i * t.cols
			copy(t.lengths[dst:dst+t.cols], b.lens[src:src+b.cols])
			if withTags {
				copy(t.tags[dst:dst+t.cols], b.tags[src:src+b.cols])
			}
		}
	}
	return t
}
