package transport

import (
	"context"
	"sync"
)

type link struct {
	rows   chan Segment
	traces chan Trace

	closeRows   sync.Once
	closeTraces sync.Once
}

type localEndpoint struct {
	rank, size int
	up, down   *link // up links to rank-1, down to rank+1
	closeOnce  sync.Once
}

// NewLocalMesh returns size endpoints chained by buffered channels. buffer
// bounds the number of boundary segments in flight per link.
func NewLocalMesh(size, buffer int) []Endpoint {
	if size < 1 {
		size = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	links := make([]*link, size-1)
	for i := range links {
		links[i] = &link{
			rows:   make(chan Segment, buffer),
			traces: make(chan Trace, 1),
		}
	}
	eps := make([]Endpoint, size)
	for k := 0; k < size; k++ {
		ep := &localEndpoint{rank: k, size: size}
		if k > 0 {
			ep.up = links[k-1]
		}
		if k < size-1 {
			ep.down = links[k]
		}
		eps[k] = ep
	}
	return eps
}

func (e *localEndpoint) Rank() int { return e.rank }
func (e *localEndpoint) Size() int { return e.size }

func (e *localEndpoint) SendRow(ctx context.Context, seg Segment) error {
	if e.down == nil {
		return &LinkError{Op: "send row", Peer: e.rank + 1, Err: ErrNoPeer}
	}
	select {
	case e.down.rows <- seg:
		return nil
	case <-ctx.Done():
		return &LinkError{Op: "send row", Peer: e.rank + 1, Err: ctx.Err()}
	}
}

func (e *localEndpoint) RecvRow(ctx context.Context) (Segment, error) {
	if e.up == nil {
		return Segment{}, &LinkError{Op: "recv row", Peer: e.rank - 1, Err: ErrNoPeer}
	}
	select {
	case seg, ok := <-e.up.rows:
		if !ok {
			return Segment{}, &LinkError{Op: "recv row", Peer: e.rank - 1, Err: ErrClosed}
		}
		return seg, nil
	case <-ctx.Done():
		return Segment{}, &LinkError{Op: "recv row", Peer: e.rank - 1, Err: ctx.Err()}
	}
}

func (e *localEndpoint) SendTrace(ctx context.Context, tr Trace) error {
	if e.up == nil {
		return &LinkError{Op: "send trace", Peer: e.rank - 1, Err: ErrNoPeer}
	}
	select {
	case e.up.traces <- tr:
		return nil
	case <-ctx.Done():
		return &LinkError{Op: "send trace", Peer: e.rank - 1, Err: ctx.Err()}
	}
}

func (e *localEndpoint) RecvTrace(ctx context.Context) (Trace, error) {
	if e.down == nil {
		return Trace{}, &LinkError{Op: "recv trace", Peer: e.rank + 1, Err: ErrNoPeer}
	}
	select {
	case tr, ok := <-e.down.traces:
		if !ok {
			return Trace{}, &LinkError{Op: "recv trace", Peer: e.rank + 1, Err: ErrClosed}
		}
		return tr, nil
	case <-ctx.Done():
		return Trace{}, &LinkError{Op: "recv trace", Peer: e.rank + 1, Err: ctx.Err()}
	}
}

// Close closes the directions this rank writes to. Buffered messages remain
// readable by the peers.
func (e *localEndpoint) Close() error {
	e.closeOnce.Do(func() {
		if e.down != nil {
			e.down.closeRows.Do(func() { close(e.down.rows) })
		}
		if e.up != nil {
			e.up.closeTraces.Do(func() { close(e.up.traces) })
		}
	})
	return nil
}
