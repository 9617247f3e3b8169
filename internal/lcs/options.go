package lcs

import (
	"runtime"

	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/transport"
)

// Trace selects what a fill keeps for reconstruction.
type Trace int

const (
	// TraceTags keeps one backtrack tag per cell and walks them.
	TraceTags Trace = iota
	// TraceLengths keeps lengths only and re-derives the path from them.
	TraceLengths
	// TraceNone computes the length only; no string is recovered.
	TraceNone
)

func (t Trace) String() string {
	switch t {
	case TraceLengths:
		return "lengths"
	case TraceNone:
		return "none"
	}
	return "tags"
}

// ParseTrace is the inverse of Trace.String.
func ParseTrace(s string) (Trace, error) {
	switch s {
	case "", "tags":
		return TraceTags, nil
	case "lengths":
		return TraceLengths, nil
	case "none":
		return TraceNone, nil
	}
	return TraceTags, apperrors.ValidationError{Field: "trace", Message: "must be one of tags, lengths, none"}
}

// Options tunes a fill. The zero value is valid and is completed by
// normalize: every strategy treats zero fields as "use the default".
type Options struct {
	// Alphabet validates both sequences before any allocation.
	Alphabet Alphabet
	// Workers is the goroutine pool size of the wavefront strategy.
	Workers int
	// Processes is the rank count of the distributed strategy.
	Processes int
	// TileWidth is the number of columns a distributed rank computes before
	// handing the matching boundary segment to the next rank.
	TileWidth int
	Trace     Trace
	// KeepTable retains the filled table in the Result.
	KeepTable bool
	// MemoryLimit rejects tables larger than this many bytes. Zero disables it.
	MemoryLimit uint64
	// Mesh builds the rank endpoints of an in-process distributed run.
	// Nil selects transport.NewLocalMesh.
	Mesh func(size, buffer int) []transport.Endpoint
}

func (o Options) normalize(n int) Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Processes <= 0 {
		o.Processes = 1
	}
	if o.TileWidth <= 0 {
		o.TileWidth = defaultTileWidth(n, o.Processes)
	}
	if o.Mesh == nil {
		o.Mesh = transport.NewLocalMesh
	}
	return o
}

// defaultTileWidth aims for about four tiles per rank so the pipeline fills
// quickly, without dropping below a width where messaging dominates.
func defaultTileWidth(n, processes int) int {
	const minTile = 64
	w := (n + 4*processes - 1) / (4 * processes)
	if w < minTile {
		w = minTile
	}
	return w
}

func (o Options) validate(m, n int) error {
	if o.Trace < TraceTags || o.Trace > TraceNone {
		return apperrors.ValidationError{Field: "trace", Message: "unknown trace mode"}
	}
	if o.MemoryLimit > 0 {
		if need := EstimateBytes(m, n, o.Trace); need > o.MemoryLimit {
			return apperrors.MemoryError{Requested: need, Available: o.MemoryLimit, Limit: o.MemoryLimit}
		}
	}
	return nil
}
