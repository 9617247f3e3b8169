// Package transport carries boundary rows and backtrace handoffs between the
// ranks of a distributed LCS fill. Ranks form a chain: rank k receives rows
// from k-1 and sends rows to k+1, while traces travel the other way.
//
// Two meshes are provided. NewLocalMesh links goroutine ranks with channels
// and shares nothing but the messages themselves. ListenTCP and DialTCP link
// ranks running in separate processes or on separate machines.
package transport

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when the link to a peer has been closed.
	ErrClosed = errors.New("transport: link closed")
	// ErrNoPeer is returned when sending past either end of the chain.
	ErrNoPeer = errors.New("transport: no peer in that direction")
)

// Segment is a contiguous run of finalized values from a rank's boundary row.
// Row is the padded table row index, Start the column of Values[0].
type Segment struct {
	Row    uint32
	Start  uint32
	Values []uint32
}

// Trace is the backtrace handoff sent from rank k to rank k-1. Column is the
// column at which the walk left rank k's band; zero means the walk is over.
// Suffix holds the part of the LCS recovered so far, in order.
type Trace struct {
	Column uint32
	Length uint32
	Suffix []byte
}

// Endpoint is one rank's view of the chain.
type Endpoint interface {
	Rank() int
	Size() int
	// SendRow hands a boundary segment to rank+1.
	SendRow(ctx context.Context, seg Segment) error
	// RecvRow blocks for the next boundary segment from rank-1.
	RecvRow(ctx context.Context) (Segment, error)
	// SendTrace hands the backtrace to rank-1.
	SendTrace(ctx context.Context, tr Trace) error
	// RecvTrace blocks for the backtrace from rank+1.
	RecvTrace(ctx context.Context) (Trace, error)
	Close() error
}

// LinkError describes a failed exchange with a neighbouring rank.
type LinkError struct {
	Op   string
	Peer int
	Err  error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("transport: %s with rank %d: %v", e.Op, e.Peer, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }
