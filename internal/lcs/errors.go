package lcs

import (
	"errors"
	"fmt"

	apperrors "github.com/agbru/lcscalc/internal/errors"
)

var (
	// ErrWorkerPanic wraps a panic recovered inside a fill worker.
	ErrWorkerPanic = errors.New("lcs: worker panicked")
	// ErrUnknownStrategy is returned by the factory for unregistered names.
	ErrUnknownStrategy = errors.New("lcs: unknown strategy")
	// ErrNoTrace is returned when reconstruction is asked of a table that
	// kept neither tags nor lengths.
	ErrNoTrace = errors.New("lcs: table cannot be backtracked")
)

// PartitionUnavailableError fails a whole distributed run when a boundary row
// or backtrace could not be exchanged with a neighbouring rank.
type PartitionUnavailableError struct {
	// Rank is the rank that could not be reached.
	Rank int
	// Row is the padded boundary row involved, or -1 when unknown.
	Row   int
	Cause error
}

func (e *PartitionUnavailableError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("partition of rank %d unavailable: %v", e.Rank, e.Cause)
	}
	return fmt.Sprintf("partition of rank %d unavailable at row %d: %v", e.Rank, e.Row, e.Cause)
}

func (e *PartitionUnavailableError) Unwrap() error { return e.Cause }

// ExitCode maps partition failures to apperrors.ExitErrorPartition.
func (e *PartitionUnavailableError) ExitCode() int { return apperrors.ExitErrorPartition }
